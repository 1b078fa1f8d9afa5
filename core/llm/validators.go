package llm

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursepanel/core"
)

var (
	llmModelTag  = "llmmodel"
	llmModelText = "unknown LLM model"
)

// InitValidators registers the `llmmodel` tag, which only accepts ids of the given catalog.
func InitValidators(validate *validator.Validate, translator ut.Translator, catalog *Catalog) {
	_ = validate.RegisterValidation(llmModelTag, func(fl validator.FieldLevel) bool {
		return catalog.Has(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, llmModelTag, llmModelText)
}
