package dto

// PageRequest paginación para listados (page empieza en 1).
type PageRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"pageSize"`
}

// DefaultPage aplica valores por defecto y acota PageSize.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

// Bounds devuelve los índices [from, to) de la página dentro de total elementos.
func (p PageRequest) Bounds(total int) (int, int) {
	from := (p.Page - 1) * p.PageSize
	if from > total {
		from = total
	}
	to := from + p.PageSize
	if to > total {
		to = total
	}
	return from, to
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
