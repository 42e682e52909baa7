package controller

import (
	"strconv"

	"github.com/Wollie333/vilo-sub013/internal/dto"
	"github.com/Wollie333/vilo-sub013/internal/mapper"
	"github.com/Wollie333/vilo-sub013/internal/pkg/apperrors"
	"github.com/Wollie333/vilo-sub013/internal/pkg/serverutils"
	"github.com/Wollie333/vilo-sub013/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRefundController interface {
	RegisterRoutes(r fiber.Router)
	CreateFromCancellation(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Escalations(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	Review(ctx *fiber.Ctx) error
	Approve(ctx *fiber.Ctx) error
	Reject(ctx *fiber.Ctx) error
	MarkProcessing(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
	Fail(ctx *fiber.Ctx) error
	Settle(ctx *fiber.Ctx) error
}

type refundController struct {
	refundService service.IRefundService
	refundMapper  *mapper.RefundMapper
	jwtSecret     string
}

func NewRefundController(refundService service.IRefundService, jwtSecret string) IRefundController {
	return &refundController{
		refundService: refundService,
		refundMapper:  mapper.NewRefundMapper(),
		jwtSecret:     jwtSecret,
	}
}

func (c *refundController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/refund/v1")
	h.Use(serverutils.StaffAuth(c.jwtSecret))

	h.Post("refunds/from-cancellation", c.CreateFromCancellation)
	h.Get("refunds", c.List)
	h.Get("refunds/stats", c.Stats)
	h.Get("refunds/escalations", c.Escalations)
	h.Get("refunds/:id", c.Show)
	h.Get("refunds/:id/history", c.History)
	h.Post("refunds/:id/review", c.Review)
	h.Post("refunds/:id/approve", c.Approve)
	h.Post("refunds/:id/reject", c.Reject)
	h.Post("refunds/:id/processing", c.MarkProcessing)
	h.Post("refunds/:id/complete", c.Complete)
	h.Post("refunds/:id/fail", c.Fail)
	h.Post("refunds/:id/settle", c.Settle)
}

func (c *refundController) actor(ctx *fiber.Ctx) dto.Actor {
	return dto.Actor{
		Id:   serverutils.StaffId(ctx),
		Name: serverutils.StaffName(ctx),
	}
}

func (c *refundController) refundId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid refund id %q", ctx.Params("id"))
	}
	return id, nil
}

func (c *refundController) CreateFromCancellation(ctx *fiber.Ctx) error {
	var req dto.CreateRefundRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	refund, err := c.refundService.CreateFromCancellation(ctx.Context(), serverutils.TenantId(ctx), req.BookingId)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).
		JSON(serverutils.SuccessResponse("Refund created", c.refundMapper.ToResponse(refund)))
}

func (c *refundController) List(ctx *fiber.Ctx) error {
	var filter dto.RefundListFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return apperrors.Validation("invalid query parameters")
	}

	refunds, err := c.refundService.GetRefunds(ctx.Context(), serverutils.TenantId(ctx), &filter)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund list", c.refundMapper.ToResponseList(refunds)))
}

func (c *refundController) Stats(ctx *fiber.Ctx) error {
	stats, err := c.refundService.GetStats(ctx.Context(), serverutils.TenantId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund stats", stats))
}

func (c *refundController) Escalations(ctx *fiber.Ctx) error {
	hours, _ := strconv.Atoi(ctx.Query("hours", "24"))

	refunds, err := c.refundService.GetPendingEscalation(ctx.Context(), serverutils.TenantId(ctx), hours)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refunds pending escalation", c.refundMapper.ToResponseList(refunds)))
}

func (c *refundController) Show(ctx *fiber.Ctx) error {
	id, err := c.refundId(ctx)
	if err != nil {
		return err
	}

	refund, err := c.refundService.GetRefundById(ctx.Context(), serverutils.TenantId(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund detail", c.refundMapper.ToResponse(refund)))
}

func (c *refundController) History(ctx *fiber.Ctx) error {
	id, err := c.refundId(ctx)
	if err != nil {
		return err
	}

	history, err := c.refundService.GetStatusHistory(ctx.Context(), serverutils.TenantId(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund history", c.refundMapper.ToHistoryResponseList(history)))
}

func (c *refundController) Review(ctx *fiber.Ctx) error {
	id, err := c.refundId(ctx)
	if err != nil {
		return err
	}

	var req dto.ReviewRefundRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return apperrors.Validation("invalid request body")
	}

	refund, err := c.refundService.MarkUnderReview(ctx.Context(), serverutils.TenantId(ctx), id, c.actor(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund under review", c.refundMapper.ToResponse(refund)))
}

func (c *refundController) Approve(ctx *fiber.Ctx) error {
	id, err := c.refundId(ctx)
	if err != nil {
		return err
	}

	var req dto.ApproveRefundRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	refund, err := c.refundService.Approve(ctx.Context(), serverutils.TenantId(ctx), id, c.actor(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund approved", c.refundMapper.ToResponse(refund)))
}

func (c *refundController) Reject(ctx *fiber.Ctx) error {
	id, err := c.refundId(ctx)
	if err != nil {
		return err
	}

	var req dto.RejectRefundRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	refund, err := c.refundService.Reject(ctx.Context(), serverutils.TenantId(ctx), id, c.actor(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund rejected", c.refundMapper.ToResponse(refund)))
}

func (c *refundController) MarkProcessing(ctx *fiber.Ctx) error {
	id, err := c.refundId(ctx)
	if err != nil {
		return err
	}

	refund, err := c.refundService.MarkProcessing(ctx.Context(), serverutils.TenantId(ctx), id, c.actor(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund processing", c.refundMapper.ToResponse(refund)))
}

func (c *refundController) Complete(ctx *fiber.Ctx) error {
	id, err := c.refundId(ctx)
	if err != nil {
		return err
	}

	var req dto.CompleteRefundRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	refund, err := c.refundService.Complete(ctx.Context(), serverutils.TenantId(ctx), id, c.actor(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund completed", c.refundMapper.ToResponse(refund)))
}

func (c *refundController) Fail(ctx *fiber.Ctx) error {
	id, err := c.refundId(ctx)
	if err != nil {
		return err
	}

	var req dto.FailRefundRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	refund, err := c.refundService.Fail(ctx.Context(), serverutils.TenantId(ctx), id, c.actor(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund failed", c.refundMapper.ToResponse(refund)))
}

// Settle drives the automated gateway settlement of an approved refund. The
// refund lands in completed or failed; a gateway failure still returns the
// refund body alongside the error status.
func (c *refundController) Settle(ctx *fiber.Ctx) error {
	id, err := c.refundId(ctx)
	if err != nil {
		return err
	}

	refund, err := c.refundService.ProcessGatewayRefund(ctx.Context(), serverutils.TenantId(ctx), id, c.actor(ctx))
	if err != nil {
		if apperrors.IsGateway(err) && refund != nil {
			return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorEnvelopeWithData(
				fiber.StatusBadGateway, string(apperrors.KindGateway), err.Error(),
				c.refundMapper.ToResponse(refund),
			))
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund settled", c.refundMapper.ToResponse(refund)))
}
