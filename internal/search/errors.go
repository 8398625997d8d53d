package search

import "errors"

var (
	// ErrCatalogUnavailable indica falha de infraestrutura ao consultar o
	// catálogo. Zero resultados NÃO é esse erro: busca vazia é sucesso.
	ErrCatalogUnavailable = errors.New("catálogo indisponível")
)
