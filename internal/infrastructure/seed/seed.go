// Package seed carga el archivo YAML de arranque: configuración del local, barras con su
// stock inicial y destinatarios.
package seed

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/stock-alerts/internal/domain/entity"
)

// File contenido del seed.
type File struct {
	Config     *entity.StockAlertConfig `yaml:"config"`
	Bars       []Bar                    `yaml:"bars"`
	Recipients []Recipient              `yaml:"recipients"`
}

// Bar barra con sus productos.
type Bar struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Products []Product `yaml:"products"`
}

// Product stock inicial de un producto en la barra.
type Product struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	CategoryID  string  `yaml:"category_id"`
	ProductType string  `yaml:"product_type"`
	Unit        string  `yaml:"unit"`
	Stock       float64 `yaml:"stock"`
	Capacity    float64 `yaml:"capacity"`
}

// Recipient destinatario precargado.
type Recipient struct {
	UserID    string           `yaml:"user_id"`
	Name      string           `yaml:"name"`
	Role      string           `yaml:"role"`
	Channels  []entity.Channel `yaml:"channels"`
	Email     string           `yaml:"email"`
	PushToken string           `yaml:"push_token"`
	BarIDs    []string         `yaml:"bar_ids"`
}

// Load lee y decodifica el archivo.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: leer %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodifica el YAML. Campos desconocidos son error.
func Parse(raw []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("seed: decodificar: %w", err)
	}
	for _, b := range f.Bars {
		if b.ID == "" {
			return nil, fmt.Errorf("seed: barra sin id")
		}
		for _, p := range b.Products {
			if p.ID == "" {
				return nil, fmt.Errorf("seed: producto sin id en barra %s", b.ID)
			}
		}
	}
	return &f, nil
}

// ProductStock convierte las barras a filas de stock.
func (f *File) ProductStock(at time.Time) []entity.ProductStock {
	var out []entity.ProductStock
	for _, b := range f.Bars {
		for _, p := range b.Products {
			out = append(out, entity.ProductStock{
				BarID:        b.ID,
				BarName:      b.Name,
				ProductID:    p.ID,
				ProductName:  p.Name,
				CategoryID:   p.CategoryID,
				ProductType:  p.ProductType,
				Unit:         p.Unit,
				CurrentStock: decimal.NewFromFloat(p.Stock),
				Capacity:     decimal.NewFromFloat(p.Capacity),
				UpdatedAt:    at,
			})
		}
	}
	return out
}

// EntityRecipients convierte los destinatarios.
func (f *File) EntityRecipients() []entity.Recipient {
	out := make([]entity.Recipient, 0, len(f.Recipients))
	for _, r := range f.Recipients {
		out = append(out, entity.Recipient{
			UserID:    r.UserID,
			Name:      r.Name,
			Role:      r.Role,
			Channels:  r.Channels,
			Email:     r.Email,
			PushToken: r.PushToken,
			BarIDs:    r.BarIDs,
		})
	}
	return out
}
