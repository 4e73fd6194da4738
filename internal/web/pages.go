package web

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"school-meal-planner/internal/auth"
	"school-meal-planner/internal/planner"
	"school-meal-planner/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// previousMenusFill is how many stored plans the "fill from history" link
// loads into the form.
const previousMenusFill = 5

var templateFuncs = template.FuncMap{
	"statusClass": func(s planner.SupplyStatus) string {
		switch s {
		case planner.StatusPlentiful:
			return "status-ok"
		case planner.StatusModerate:
			return "status-warn"
		case planner.StatusScarce:
			return "status-bad"
		default:
			return "status-unknown"
		}
	},
	"pending": func(s session.Status) bool {
		return s == session.StatusPending
	},
}

type pageData struct {
	State          session.Snapshot
	Form           planner.MealRequest
	Selected       map[string]bool
	MenuTypes      []string
	Days           []string
	Allergens      []string
	SharingEnabled bool
	Notice         string
	Error          string
}

var notices = map[string]string{
	"shared": "텔레그램으로 식단을 공유했습니다.",
}

// Index renders the form and the current session state.
func (s *Server) Index(c *gin.Context) {
	data := s.page(s.svc.Snapshot(auth.SessionID(c)))
	data.Notice = notices[c.Query("notice")]
	data.Error = c.Query("error")

	if c.Query("fill") == "history" {
		menus, err := s.svc.PreviousMenus(c.Request.Context(), previousMenusFill)
		if err != nil {
			s.logger.Warn("failed to load previous menus", zap.Error(err))
			data.Error = "이전 식단을 불러오지 못했습니다."
		} else {
			data.Form.PreviousMenus = menus
		}
	}

	c.HTML(http.StatusOK, "index.html", data)
}

// SubmitPlan handles the form post and redirects back to the page.
func (s *Server) SubmitPlan(c *gin.Context) {
	var req planner.MealRequest
	if err := c.ShouldBind(&req); err != nil {
		s.renderFormError(c, req, "입력값을 확인해 주세요.")
		return
	}

	if _, err := s.svc.GeneratePlan(c.Request.Context(), auth.SessionID(c), req); err != nil {
		if errors.Is(err, planner.ErrInvalidRequest) {
			s.renderFormError(c, req, "날짜, 요일, 메뉴 유형은 필수입니다.")
			return
		}
		s.redirectWithError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitLookup handles the ingredient lookup button.
func (s *Server) SubmitLookup(c *gin.Context) {
	if _, err := s.svc.LookupIngredients(c.Request.Context(), auth.SessionID(c)); err != nil {
		s.redirectWithError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/#ingredients")
}

// SubmitShare handles the share button.
func (s *Server) SubmitShare(c *gin.Context) {
	if err := s.svc.Share(c.Request.Context(), auth.SessionID(c)); err != nil {
		s.redirectWithError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/?notice=shared")
}

func (s *Server) page(snap session.Snapshot) pageData {
	form := snap.Request
	if form.Date == "" {
		form = planner.DefaultRequest(s.now())
	}
	return pageData{
		State:          snap,
		Form:           form,
		Selected:       selected(form.Allergens),
		MenuTypes:      planner.MenuTypes,
		Days:           planner.DaysOfWeek,
		Allergens:      planner.Allergens,
		SharingEnabled: s.svc.SharingEnabled(),
	}
}

func (s *Server) renderFormError(c *gin.Context, req planner.MealRequest, msg string) {
	data := s.page(s.svc.Snapshot(auth.SessionID(c)))
	data.Form = req
	data.Selected = selected(req.Allergens)
	data.Error = msg
	c.HTML(http.StatusBadRequest, "index.html", data)
}

func (s *Server) redirectWithError(c *gin.Context, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		_ = c.Error(err)
	}
	c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(userMessage(err)))
}

func userMessage(err error) string {
	switch statusFor(err) {
	case http.StatusConflict:
		return "지금은 요청을 처리할 수 없습니다. 식단을 먼저 생성해 주세요."
	case http.StatusServiceUnavailable:
		return "공유 기능이 설정되어 있지 않습니다."
	case http.StatusGone:
		return "세션이 만료되었습니다. 다시 시도해 주세요."
	default:
		return "알 수 없는 오류가 발생했습니다."
	}
}

func selected(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
