package course

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/coursepanel/core"
)

type Course struct {
	ID         string `json:"course_id" db:"id"`
	Name       string `json:"course_name" db:"name"`
	Department string `json:"course_department" db:"department"`
	Number     string `json:"course_number" db:"number"`
	LLMModelID string `json:"-" db:"llm_model_id"` // raw stored value; may be empty
}

// ModelConfig is the wire shape of a course's model selection.
type ModelConfig struct {
	CourseID   string `json:"course_id"`
	LLMModelID string `json:"llm_model_id,omitempty"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	ID         string `json:"course_id"`
	Name       string `json:"course_name" validate:"required"`
	Department string `json:"course_department" validate:"omitempty,alphanum_"`
	Number     string `json:"course_number" validate:"omitempty,alphanum_"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.ID = core.CleanString(nc.ID)
	nc.Name = core.CleanString(nc.Name)
	nc.Department = strings.ToUpper(core.CleanString(nc.Department))
	nc.Number = core.CleanString(nc.Number)
	return validate.Struct(nc)
}

// UpdateModel is an instructor's request to change a course's model.
type UpdateModel struct {
	CourseID        string `json:"-" validate:"required"`
	InstructorEmail string `json:"-" validate:"required,email"`
	LLMModelID      string `json:"llm_model_id" validate:"required,llmmodel"`
}

func (um *UpdateModel) Validate(validate *validator.Validate) error {
	um.CourseID = core.CleanString(um.CourseID)
	um.InstructorEmail = core.CleanString(um.InstructorEmail, true /* lower */)
	um.LLMModelID = core.CleanString(um.LLMModelID)
	return validate.Struct(um)
}

// TitleCase upper-cases the first word (the course code) and capitalizes the others.
// eg. "cosc 499 capstone project" -> "COSC 499 Capstone Project"
func TitleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		if i == 0 {
			words[i] = strings.ToUpper(w)
			continue
		}
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
