// Package ledger exposes the ledger entity handlers over HTTP.
package ledger

import (
	"github.com/amirasaad/finsync/pkg/domain"
	ledgersvc "github.com/amirasaad/finsync/pkg/service/ledger"
	"github.com/amirasaad/finsync/webapi/common"
	"github.com/gofiber/fiber/v2"
)

func Routes(app *fiber.App, svc *ledgersvc.Service, protected ...fiber.Handler) {
	g := app.Group("/ledger", protected...)

	g.Get("/state", State(svc))
	g.Get("/view", ActiveView(svc))
	g.Get("/summary", Summary(svc))

	g.Post("/transactions", create("Transaction not created", svc.AddTransaction))
	g.Put("/transactions/:id", edit("Transaction not updated", svc.UpdateTransaction))
	g.Post("/transactions/:id/toggle-paid", byID("Transaction not updated", svc.TogglePaid))
	g.Delete("/transactions/:id", remove("Transaction not deleted", svc.DeleteTransaction))

	g.Post("/accounts", create("Account not created", svc.AddAccount))
	g.Put("/accounts/:id", edit("Account not updated", svc.UpdateAccount))
	g.Delete("/accounts/:id", remove("Account not deleted", svc.DeleteAccount))

	g.Post("/investments", create("Investment not created", svc.AddInvestment))
	g.Put("/investments/:id", edit("Investment not updated", svc.UpdateInvestment))
	g.Delete("/investments/:id", remove("Investment not deleted", svc.DeleteInvestment))

	g.Post("/plans", create("Plan not created", svc.AddPlan))
	g.Post("/plans/:id/pay", byID("Installment not paid", svc.PayInstallment))
	g.Post("/plans/:id/undo", byID("Installment not undone", svc.UndoInstallment))
	g.Put("/plans/:id/monthly", edit("Plan not updated", func(id string, in MonthlyAmountInput) (domain.LongTermTransaction, error) {
		return svc.SetMonthlyAmount(id, in.MonthlyAmount)
	}))
	g.Delete("/plans/:id", remove("Plan not deleted", svc.DeletePlan))

	g.Post("/notifications/read-all", action("Notifications not updated", svc.MarkAllRead))
	g.Delete("/notifications/:id", remove("Notification not deleted", svc.DeleteNotification))
	g.Delete("/notifications", action("Notifications not cleared", svc.ClearNotifications))

	g.Put("/profile", set("Profile not saved", svc.SetProfile))
	g.Put("/theme", set("Theme not saved", svc.SetTheme))
	g.Put("/notepad", set("Notepad not saved", func(in NotepadInput) error { return svc.SetNotepad(in.Content) }))
	g.Put("/cdi-rate", set("CDI rate not saved", func(in CDIRateInput) error { return svc.SetCDIRate(in.Rate) }))

	g.Post("/months/duplicate", DuplicateMonth(svc))
	g.Put("/months/:id/select", remove("Month not selected", svc.SelectMonth))
	g.Delete("/months/:id", remove("Month not deleted", svc.DeleteMonth))
}

// State returns the whole session state.
// @Summary Session state
// @Tags ledger
// @Produce json
// @Success 200 {object} common.Response
// @Router /ledger/state [get]
func State(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "State", svc.Snapshot())
	}
}

// ActiveView returns the active month with its derived figures.
// @Summary Active month
// @Tags ledger
// @Produce json
// @Success 200 {object} common.Response
// @Failure 404 {object} common.ProblemDetails
// @Router /ledger/view [get]
func ActiveView(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		v, err := svc.ActiveView()
		if err != nil {
			return common.ProblemDetailsJSON(c, "No active month", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Active month", v)
	}
}

func Summary(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.Summary()
		if err != nil {
			return common.ProblemDetailsJSON(c, "No active month", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Summary", s)
	}
}

// DuplicateMonth creates the month after the latest one.
// @Summary Duplicate month forward
// @Tags ledger
// @Produce json
// @Success 201 {object} common.Response
// @Failure 409 {object} common.ProblemDetails
// @Router /ledger/months/duplicate [post]
func DuplicateMonth(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := svc.DuplicateMonth()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Month not created", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Month created", m)
	}
}
