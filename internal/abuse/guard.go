// Package abuse implementa o controle de abuso da busca: limites de taxa
// por IP e por usuário, e supressão de queries duplicadas em sequência.
// Todo o estado vive em memória no processo; um loop de limpeza em segundo
// plano remove entradas expiradas.
package abuse

import (
	"fmt"
	"sync"
	"time"
)

const (
	// Limites de janela fixa
	ipLimit      = 10
	ipWindow     = 1 * time.Minute
	userLimit    = 50
	userWindow   = 1 * time.Hour
	spamWindow   = 5 * time.Second
	spamMaxDupes = 2

	sweepInterval = 60 * time.Second
)

// RejectionError indica que a requisição foi recusada pelo controle de
// abuso. Carrega o motivo e a sugestão de espera para o cliente.
type RejectionError struct {
	Reason     string
	RetryAfter time.Duration
	Message    string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("abuse: %s: %s", e.Reason, e.Message)
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

type spamEntry struct {
	query string
	at    time.Time
}

// Guard mantém os contadores de taxa e o histórico recente de queries.
// Seguro para uso concorrente.
type Guard struct {
	mu         sync.Mutex
	ipLimits   map[string]*rateLimitEntry
	userLimits map[string]*rateLimitEntry
	spam       map[string][]spamEntry

	now  func() time.Time
	stop chan struct{}
}

// NewGuard cria o guard e inicia o loop de limpeza em segundo plano.
// Chame Stop() no shutdown.
func NewGuard() *Guard {
	g := &Guard{
		ipLimits:   make(map[string]*rateLimitEntry),
		userLimits: make(map[string]*rateLimitEntry),
		spam:       make(map[string][]spamEntry),
		now:        time.Now,
		stop:       make(chan struct{}),
	}
	go g.sweepLoop()
	return g
}

// Stop encerra o loop de limpeza.
func (g *Guard) Stop() {
	close(g.stop)
}

// Admit decide se uma busca pode prosseguir. userID vazio indica cliente
// anônimo (limitado por IP); caso contrário vale o limite por usuário.
// A verificação de duplicata vem antes dos limites de taxa e uma rejeição
// não consome cota.
func (g *Guard) Admit(ip, userID, query string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	if err := g.checkSpam(ip, query, now); err != nil {
		return err
	}

	if userID != "" {
		return g.checkLimit(g.userLimits, userID, userLimit, userWindow, now, &RejectionError{
			Reason:     "user_rate_limit",
			RetryAfter: userWindow,
			Message:    "Limite de buscas por hora excedido. Tente novamente em 1 hora.",
		})
	}
	return g.checkLimit(g.ipLimits, ip, ipLimit, ipWindow, now, &RejectionError{
		Reason:     "ip_rate_limit",
		RetryAfter: ipWindow,
		Message:    "Muitas requisições. Tente novamente em 1 minuto.",
	})
}

// checkSpam rejeita a terceira ocorrência da mesma query pelo mesmo IP
// dentro da janela de 5s. Queries vazias não contam. A rejeição acontece
// antes do registro: a tentativa recusada não estende a janela.
func (g *Guard) checkSpam(ip, query string, now time.Time) error {
	if query == "" {
		return nil
	}

	recent := g.spam[ip][:0]
	for _, e := range g.spam[ip] {
		if now.Sub(e.at) < spamWindow {
			recent = append(recent, e)
		}
	}

	dupes := 0
	for _, e := range recent {
		if e.query == query {
			dupes++
		}
	}
	if dupes >= spamMaxDupes {
		g.spam[ip] = recent
		return &RejectionError{
			Reason:     "duplicate_query",
			RetryAfter: spamWindow,
			Message:    "Query duplicada detectada. Aguarde 5 segundos.",
		}
	}

	g.spam[ip] = append(recent, spamEntry{query: query, at: now})
	return nil
}

// checkLimit aplica um limite de janela fixa: a janela reinicia quando
// expira, e a requisição que excederia o limite é recusada sem consumir
// cota.
func (g *Guard) checkLimit(m map[string]*rateLimitEntry, key string, limit int, window time.Duration, now time.Time, rej *RejectionError) error {
	entry, ok := m[key]
	if !ok || now.After(entry.resetAt) {
		entry = &rateLimitEntry{count: 0, resetAt: now.Add(window)}
		m[key] = entry
	}
	if entry.count >= limit {
		rej.RetryAfter = entry.resetAt.Sub(now)
		return rej
	}
	entry.count++
	return nil
}

func (g *Guard) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.sweep()
		case <-g.stop:
			return
		}
	}
}

// sweep remove janelas de taxa expiradas e históricos de spam antigos.
func (g *Guard) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, entry := range g.ipLimits {
		if now.After(entry.resetAt) {
			delete(g.ipLimits, key)
		}
	}
	for key, entry := range g.userLimits {
		if now.After(entry.resetAt) {
			delete(g.userLimits, key)
		}
	}
	for ip, entries := range g.spam {
		recent := entries[:0]
		for _, e := range entries {
			if now.Sub(e.at) < spamWindow {
				recent = append(recent, e)
			}
		}
		if len(recent) == 0 {
			delete(g.spam, ip)
		} else {
			g.spam[ip] = recent
		}
	}
}
