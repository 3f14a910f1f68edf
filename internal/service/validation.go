package service

import (
	"math"

	"embassy-inventory/internal/model"
	"embassy-inventory/pkg/validator"

	v10 "github.com/go-playground/validator/v10"
)

func init() {
	rules := map[string]v10.Func{
		"unit": func(fl v10.FieldLevel) bool {
			return model.Unit(fl.Field().String()).IsValid()
		},
		"category": func(fl v10.FieldLevel) bool {
			return model.Category(fl.Field().String()).IsValid()
		},
		// Prices arrive as float64; anything the REAL column cannot hold is refused.
		"money": func(fl v10.FieldLevel) bool {
			v := fl.Field().Float()
			return !math.IsInf(v, 0) && !math.IsNaN(v) && v <= model.MaxPrice
		},
	}
	for tag, fn := range rules {
		if err := validator.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}
