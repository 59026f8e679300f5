package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hikma-academy/academy-api/internal/dto"
	"github.com/hikma-academy/academy-api/internal/service"
	"github.com/hikma-academy/academy-api/internal/utils"
)

// ExamHandler serves exam authoring, the student exam view and the
// submission lifecycle endpoints.
type ExamHandler struct {
	service service.ExamService
	logger  zerolog.Logger
}

// NewExamHandler constructs the handler instance.
func NewExamHandler(service service.ExamService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register wires the student-facing exam routes.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Get("/:id", h.getForStudent)
	router.Post("/:id/submit", h.submit)
	router.Get("/:id/result", h.result)
}

// RegisterAdmin wires the admin exam routes.
func (h *ExamHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/exams", h.create)
	router.Put("/exams/:id", h.update)
	router.Get("/courses/:courseId/exams", h.listByCourse)
	router.Get("/exams/:id/submissions", h.listSubmissions)
	router.Patch("/submissions/:id/reopen", h.reopen)
	router.Patch("/submissions/:id/lock", h.lock)
}

func (h *ExamHandler) create(c *fiber.Ctx) error {
	var payload dto.ExamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	view, err := h.service.Create(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err, "failed to create exam")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", view)
}

func (h *ExamHandler) update(c *fiber.Ctx) error {
	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ExamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	view, err := h.service.Update(requestContext(c), examID, payload)
	if err != nil {
		return h.handleError(c, err, "failed to update exam")
	}

	return utils.SendSuccess(c, "exam updated", view)
}

func (h *ExamHandler) listByCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	views, err := h.service.ListByCourse(requestContext(c), courseID)
	if err != nil {
		return h.handleError(c, err, "failed to list exams")
	}

	return utils.SendSuccess(c, "exams retrieved", views)
}

func (h *ExamHandler) getForStudent(c *fiber.Ctx) error {
	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	view, err := h.service.GetForStudent(requestContext(c), examID)
	if err != nil {
		return h.handleError(c, err, "failed to fetch exam")
	}

	return utils.SendSuccess(c, "exam retrieved", view)
}

func (h *ExamHandler) submit(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ExamSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Submit(requestContext(c), studentID, examID, payload)
	if err != nil {
		return h.handleError(c, err, "failed to submit exam")
	}

	return utils.SendSuccess(c, "exam graded", submission)
}

func (h *ExamHandler) result(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Result(requestContext(c), studentID, examID)
	if err != nil {
		return h.handleError(c, err, "failed to fetch result")
	}

	return utils.SendSuccess(c, "result retrieved", submission)
}

func (h *ExamHandler) listSubmissions(c *fiber.Ctx) error {
	examID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.service.ListSubmissions(requestContext(c), examID)
	if err != nil {
		return h.handleError(c, err, "failed to list submissions")
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *ExamHandler) reopen(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Reopen(requestContext(c), submissionID, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to reopen submission")
	}

	return utils.SendSuccess(c, "submission reopened", submission)
}

func (h *ExamHandler) lock(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Lock(requestContext(c), submissionID, activityActorFromContext(c))
	if err != nil {
		return h.handleError(c, err, "failed to lock submission")
	}

	return utils.SendSuccess(c, "submission locked", submission)
}

func (h *ExamHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	var alreadyCompleted *service.ExamAlreadyCompletedError

	switch {
	case errors.As(err, &alreadyCompleted):
		return utils.Fail(c, fiber.StatusConflict, "exam already completed", alreadyCompleted.Existing)
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotEnrolled):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidExam), isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
