package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kampusgig/backend/internal/services/wallet"
)

type WalletHandler struct {
	Wallet *wallet.Service
}

func NewWalletHandler(walletService *wallet.Service) *WalletHandler {
	return &WalletHandler{Wallet: walletService}
}

func (h *WalletHandler) Summary(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	summary, err := h.Wallet.GetSummary(uid)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, summary)
}

func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "unauthorized")
	}

	txs, err := h.Wallet.ListTransactions(uid)
	if err != nil {
		return respondErr(c, err)
	}
	return ok(c, txs)
}
