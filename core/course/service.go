package course

import (
	"context"
	"fmt"
	"net/mail"
	texttmpl "text/template"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/llm"
)

var (
	// errors
	ErrNotFound      = errors.New("course not found")
	ErrNotInstructor = errors.New("instructor is not assigned to this course")
	ErrCourseExists  = errors.New("a course with this id already exists")

	modelChangedTmpl = texttmpl.Must(texttmpl.New("model_changed").Parse(
		`Hello,

The LLM model of {{.CourseName}} was changed to {{.ModelName}} ({{.ModelID}}) by {{.InstructorEmail}}.

If you did not make this change, please contact your administrator.
`))
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		ListInstructorCourses(ctx context.Context, email string) ([]Course, error)
		AssignInstructor(ctx context.Context, courseID, email string) error
		IsInstructor(ctx context.Context, courseID, email string) (bool, error)
		UpdateCourseModel(ctx context.Context, courseID, modelID string) error
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Get(ctx context.Context, id string) (Course, error)
		ListForInstructor(ctx context.Context, email string) ([]Course, error)
		AssignInstructor(ctx context.Context, courseID, email string) error
		IsInstructor(ctx context.Context, courseID, email string) (bool, error)
		GetModel(ctx context.Context, courseID string) (ModelConfig, error)
		UpdateModel(ctx context.Context, um UpdateModel) (ModelConfig, error)
	}

	service struct {
		repo    Repository
		catalog *llm.Catalog
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, catalog *llm.Catalog, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		catalog: catalog,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	c := Course{
		ID:         nc.ID,
		Name:       nc.Name,
		Department: nc.Department,
		Number:     nc.Number,
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return svc.repo.CreateCourse(ctx, c)
}

func (svc *service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, core.CleanString(id))
}

func (svc *service) ListForInstructor(ctx context.Context, email string) ([]Course, error) {
	return svc.repo.ListInstructorCourses(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) AssignInstructor(ctx context.Context, courseID, email string) error {
	courseID = core.CleanString(courseID)
	if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
		return err
	}
	return svc.repo.AssignInstructor(ctx, courseID, core.CleanString(email, true /* lower */))
}

func (svc *service) IsInstructor(ctx context.Context, courseID, email string) (bool, error) {
	return svc.repo.IsInstructor(ctx, core.CleanString(courseID), core.CleanString(email, true /* lower */))
}

// GetModel returns the stored model selection as is; clients substitute the default for absent values.
func (svc *service) GetModel(ctx context.Context, courseID string) (ModelConfig, error) {
	c, err := svc.Get(ctx, courseID)
	if err != nil {
		return ModelConfig{}, err
	}
	return ModelConfig{CourseID: c.ID, LLMModelID: c.LLMModelID}, nil
}

// UpdateModel expects a validated UpdateModel.
func (svc *service) UpdateModel(ctx context.Context, um UpdateModel) (ModelConfig, error) {
	if err := svc.catalog.Check(um.LLMModelID); err != nil {
		return ModelConfig{}, core.NewValidationError(err, core.FieldError{Field: "llm_model_id", Error: "unknown LLM model"})
	}

	c, err := svc.repo.GetCourse(ctx, um.CourseID)
	if err != nil {
		return ModelConfig{}, err
	}
	ok, err := svc.repo.IsInstructor(ctx, c.ID, um.InstructorEmail)
	if err != nil {
		return ModelConfig{}, errors.Wrap(err, "checking course instructor")
	}
	if !ok {
		return ModelConfig{}, ErrNotInstructor
	}

	if err = svc.repo.UpdateCourseModel(ctx, c.ID, um.LLMModelID); err != nil {
		return ModelConfig{}, errors.Wrap(err, "updating course model")
	}

	if svc.conf.Mail.NotifyModelChange && c.LLMModelID != um.LLMModelID {
		svc.sendModelChangedMail(c, um)
	}
	return ModelConfig{CourseID: c.ID, LLMModelID: um.LLMModelID}, nil
}

func (svc *service) sendModelChangedMail(c Course, um UpdateModel) {
	model, _ := svc.catalog.Get(um.LLMModelID)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:       []mail.Address{{Address: um.InstructorEmail}},
		Subject:  fmt.Sprintf("%s - LLM model updated", TitleCase(c.Name)),
		Template: modelChangedTmpl,
		TemplateData: map[string]string{
			"CourseName":      TitleCase(c.Name),
			"ModelName":       model.Name,
			"ModelID":         model.ID,
			"InstructorEmail": um.InstructorEmail,
		},
	})
}
