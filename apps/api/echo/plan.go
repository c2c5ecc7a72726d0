package echoapi

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/youwenshao/staffroom/core/plan"
	"github.com/youwenshao/staffroom/core/user"
	"github.com/youwenshao/staffroom/storage/object"
)

const planNotFoundNotice = "plan not found"

// diagram upload fields of the lesson form, mapped to the document field
// each resolved URL lands in.
var lessonDiagramFiles = []struct {
	field string
	set   func(*plan.LessonForm, string)
}{
	{"intro_file", func(f *plan.LessonForm, url string) { f.IntroDiagram = url }},
	{"sd_file", func(f *plan.LessonForm, url string) { f.SDDiagram = url }},
	{"appli_file", func(f *plan.LessonForm, url string) { f.AppliDiagram = url }},
	{"ca_file", func(f *plan.LessonForm, url string) { f.CADiagram = url }},
}

func (s *server) dashboard(ctx echo.Context) error {
	idn, _ := s.auth.contextIdentity(ctx)

	lessons, err := s.opts.PlanSvc.List(ctx.Request().Context(), plan.KindLesson, idn)
	if err != nil {
		return err
	}
	units, err := s.opts.PlanSvc.List(ctx.Request().Context(), plan.KindUnit, idn)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"username":     idn.Username,
		"role":         idn.Role,
		"lesson_plans": lessons,
		"unit_plans":   units,
		"notice":       ctx.QueryParam("notice"),
	})
}

func (s *server) createLessonForm(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, plan.DefaultLessonForm(time.Now()))
}

func (s *server) createUnitForm(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, plan.DefaultUnitForm(time.Now()))
}

func (s *server) createLesson(ctx echo.Context) error {
	idn, _ := s.auth.contextIdentity(ctx)

	form := new(plan.LessonForm)
	if err := ctx.Bind(form); err != nil {
		return err
	}
	if err := form.Validate(); err != nil {
		return err
	}
	for _, df := range lessonDiagramFiles {
		url, err := s.uploadDiagram(ctx, df.field)
		if err != nil {
			return err
		}
		df.set(form, url)
	}

	doc, err := form.Document()
	if err != nil {
		return err
	}
	pl, err := s.opts.PlanSvc.Create(ctx.Request().Context(), plan.KindLesson, idn, doc, formInts(ctx, "shared_professors"))
	if err != nil {
		s.logger().Error("saving lesson plan", err)
		return redirectWithNotice(ctx, "/create-lesson", "could not save your plan, please try again")
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/lesson/%d", pl.ID))
}

func (s *server) createUnit(ctx echo.Context) error {
	idn, _ := s.auth.contextIdentity(ctx)

	form := new(plan.UnitForm)
	if err := ctx.Bind(form); err != nil {
		return err
	}
	form.UnitContents = unitContents(ctx)
	if err := form.Validate(); err != nil {
		return err
	}

	doc, err := form.Document()
	if err != nil {
		return err
	}
	pl, err := s.opts.PlanSvc.Create(ctx.Request().Context(), plan.KindUnit, idn, doc, formInts(ctx, "shared_professors"))
	if err != nil {
		s.logger().Error("saving unit plan", err)
		return redirectWithNotice(ctx, "/create-unit", "could not save your plan, please try again")
	}
	return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/unit/%d", pl.ID))
}

func (s *server) viewLesson(ctx echo.Context) error {
	return s.viewPlan(ctx, plan.KindLesson)
}

func (s *server) viewUnit(ctx echo.Context) error {
	return s.viewPlan(ctx, plan.KindUnit)
}

// viewPlan serves a stored plan to a viewer the access rule admits. A
// missing record and a malformed id both redirect to the dashboard with the
// same notice, so URL probing reveals nothing; a denied viewer gets a 403.
func (s *server) viewPlan(ctx echo.Context, kind plan.Kind) error {
	idn, _ := s.auth.contextIdentity(ctx)

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return redirectWithNotice(ctx, "/dashboard", planNotFoundNotice)
	}
	pl, err := s.opts.PlanSvc.Get(ctx.Request().Context(), kind, id, idn)
	switch err {
	case nil:
	case plan.ErrNotFound:
		return redirectWithNotice(ctx, "/dashboard", planNotFoundNotice)
	case plan.ErrPermissionDenied:
		return errHTTPForbidden
	default:
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"id":             pl.ID,
		"owner":          pl.OwnerUsername,
		"owned":          pl.OwnerID == idn.ID && !idn.IsGuest,
		"created_at":     pl.CreatedAt,
		"plan":           pl.Data,
		"viewer":         idn.Username,
		"viewer_is_prof": idn.Role == user.RoleProfessor,
	})
}

// uploadDiagram resolves one optional diagram upload field to a URL.
// An absent file or a disallowed extension yields an empty URL.
func (s *server) uploadDiagram(ctx echo.Context, field string) (string, error) {
	fh, err := ctx.FormFile(field)
	if err != nil || fh == nil || fh.Filename == "" {
		return "", nil
	}
	if !object.AllowedFile(fh.Filename) {
		s.logger().Warn(fmt.Sprintf("skipping %s: unsupported diagram type %q", field, fh.Filename))
		return "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return s.opts.Uploader.UploadDiagram(
		ctx.Request().Context(), fh.Filename, fh.Header.Get("Content-Type"), data)
}

// formInts parses a repeated form field as ints, dropping anything that
// does not parse.
func formInts(ctx echo.Context, field string) []int {
	params, err := ctx.FormParams()
	if err != nil {
		return nil
	}
	var out []int
	for _, v := range params[field] {
		if n, err := strconv.Atoi(v); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// unitContents assembles the day-by-day table from its parallel repeated
// fields; days are numbered from 1 in submission order.
func unitContents(ctx echo.Context) []plan.UnitDay {
	params, err := ctx.FormParams()
	if err != nil {
		return []plan.UnitDay{}
	}
	focus, activities, notes := params["day_focus"], params["day_activities"], params["day_notes"]
	n := len(focus)
	if len(activities) > n {
		n = len(activities)
	}
	if len(notes) > n {
		n = len(notes)
	}

	at := func(vs []string, i int) string {
		if i < len(vs) {
			return vs[i]
		}
		return ""
	}
	days := make([]plan.UnitDay, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, plan.UnitDay{
			Day:        i + 1,
			Focus:      at(focus, i),
			Activities: at(activities, i),
			Notes:      at(notes, i),
		})
	}
	return days
}

func redirectWithNotice(ctx echo.Context, path, notice string) error {
	v := url.Values{"notice": {notice}}
	return ctx.Redirect(http.StatusFound, path+"?"+v.Encode())
}
