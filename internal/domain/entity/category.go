package entity

// Velocidad de rotación de una categoría; escala la cantidad sugerida de reposición.
type RotationSpeed string

const (
	RotationSlow   RotationSpeed = "slow"
	RotationMedium RotationSpeed = "medium"
	RotationFast   RotationSpeed = "fast"
)

// Valid indica si la rotación es conocida (vacío se trata como medium).
func (r RotationSpeed) Valid() bool {
	switch r {
	case "", RotationSlow, RotationMedium, RotationFast:
		return true
	}
	return false
}

// MonitoredCategory categoría incluida en el monitoreo, con umbrales propios opcionales.
// Si Thresholds es nil se usan los umbrales por defecto del local.
type MonitoredCategory struct {
	CategoryID    string        `json:"categoryId" yaml:"category_id"`
	CategoryName  string        `json:"categoryName,omitempty" yaml:"category_name"`
	ProductType   string        `json:"productType,omitempty" yaml:"product_type"`
	RotationSpeed RotationSpeed `json:"rotationSpeed,omitempty" yaml:"rotation_speed"`
	Enabled       bool          `json:"enabled" yaml:"enabled"`
	Thresholds    *Thresholds   `json:"thresholds,omitempty" yaml:"thresholds"`
}

// MonitoredCategoryPatch actualización parcial de una categoría (PATCH /categories/:id).
type MonitoredCategoryPatch struct {
	CategoryName  *string        `json:"categoryName,omitempty"`
	ProductType   *string        `json:"productType,omitempty"`
	RotationSpeed *RotationSpeed `json:"rotationSpeed,omitempty"`
	Enabled       *bool          `json:"enabled,omitempty"`
	Thresholds    *Thresholds    `json:"thresholds,omitempty"`
	// ClearThresholds vuelve a los umbrales por defecto del local.
	ClearThresholds bool `json:"clearThresholds,omitempty"`
}
