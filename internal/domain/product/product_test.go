package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_Validate(t *testing.T) {
	valid := Product{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95")}

	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr error
	}{
		{"valid", func(p *Product) {}, nil},
		{"free item", func(p *Product) { p.Price = decimal.Zero }, nil},
		{"zero id", func(p *Product) { p.ID = 0 }, ErrInvalidID},
		{"blank title", func(p *Product) { p.Title = "   " }, ErrEmptyTitle},
		{"negative price", func(p *Product) { p.Price = decimal.NewFromInt(-1) }, ErrNegativePrice},
		{"negative rating count", func(p *Product) { p.Rating.Count = -3 }, ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
