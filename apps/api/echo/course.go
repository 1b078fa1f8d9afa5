package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coursepanel/core"
	"github.com/trezcool/coursepanel/core/course"
)

const msgModelUpdated = "LLM model updated successfully"

type courseApi struct {
	svc      course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		validate: deps.Validate,
	}

	ig := g.Group("/instructor", jwt, teacherMiddleware)
	ig.GET("/courses", api.listCourses)
	ig.GET("/get_prompt", api.getModel)
	ig.PUT("/update_llm_model", api.updateModel)

	cg := g.Group("/courses", jwt, adminMiddleware)
	cg.POST("", api.create)
	cg.POST("/:id/instructors", api.assignInstructor)
}

// Handlers

func (api *courseApi) listCourses(ctx echo.Context) error {
	email, err := instructorEmail(ctx, "email")
	if err != nil {
		return err
	}

	courses, err := api.svc.ListForInstructor(ctx.Request().Context(), email)
	if err != nil {
		return errors.Wrap(err, "listing instructor courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) getModel(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	courseID := core.CleanString(ctx.QueryParam("course_id"))
	if courseID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "this field is required"})
	}

	if err = api.checkInstructor(ctx, courseID, claims); err != nil {
		return err
	}
	cfg, err := api.svc.GetModel(ctx.Request().Context(), courseID)
	if err != nil {
		return errors.Wrap(err, "getting course model")
	}
	return ctx.JSON(http.StatusOK, cfg)
}

func (api *courseApi) updateModel(ctx echo.Context) error {
	email, err := instructorEmail(ctx, "instructor_email")
	if err != nil {
		return err
	}

	var data course.UpdateModel
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModel")
	}
	data.CourseID = ctx.QueryParam("course_id")
	data.InstructorEmail = email
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cfg, err := api.svc.UpdateModel(ctx.Request().Context(), data)
	if err != nil {
		recordModelUpdate(data.LLMModelID, false)
		return errors.Wrap(err, "updating course model")
	}
	recordModelUpdate(cfg.LLMModelID, true)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: msgModelUpdated})
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) assignInstructor(ctx echo.Context) error {
	var data AssignInstructorRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignInstructorRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.AssignInstructor(ctx.Request().Context(), ctx.Param("id"), data.Email); err != nil {
		return errors.Wrap(err, "assigning instructor")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// checkInstructor hides courses the caller does not teach; admins see everything.
func (api *courseApi) checkInstructor(ctx echo.Context, courseID string, claims Claims) error {
	if claims.IsAdmin {
		return nil
	}
	ok, err := api.svc.IsInstructor(ctx.Request().Context(), courseID, claims.Email)
	if err != nil {
		return errors.Wrap(err, "checking course instructor")
	}
	if !ok {
		if _, err = api.svc.Get(ctx.Request().Context(), courseID); err != nil {
			return err
		}
		return course.ErrNotInstructor
	}
	return nil
}

// instructorEmail reads the instructor email query param.
// Only admins may act on behalf of another instructor.
func instructorEmail(ctx echo.Context, param string) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	email := core.CleanString(ctx.QueryParam(param), true /* lower */)
	if email == "" {
		email = claims.Email
	}
	if email != core.CleanString(claims.Email, true /* lower */) && !claims.IsAdmin {
		return "", errHttpForbidden
	}
	return email, nil
}

type AssignInstructorRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (ar *AssignInstructorRequest) Validate(validate *validator.Validate) error {
	ar.Email = core.CleanString(ar.Email, true /* lower */)
	return validate.Struct(ar)
}
