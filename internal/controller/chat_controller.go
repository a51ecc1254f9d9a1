package controller

import (
	"bufio"
	"encoding/json"
	"fmt"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if !req.StreamEnabled() {
		res, err := c.service.Answer(ctx.Context(), &req)
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Success", res))
	}

	events, err := c.service.AnswerStream(ctx.Context(), &req)
	if err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	// The channel is drained to the end even when the client is gone, so the
	// pipeline behind it always finishes persisting the turn.
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		writeFailed := false
		for evt := range events {
			if writeFailed {
				continue
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				writeFailed = true
				continue
			}
			if err := w.Flush(); err != nil {
				writeFailed = true
			}
		}
	}))
	return nil
}
