package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"newsbot/internal/app"
	"newsbot/internal/transport/http/response"
)

type ArticleHandler struct {
	chatService *app.ChatService
}

func NewArticleHandler(chatService *app.ChatService) *ArticleHandler {
	return &ArticleHandler{chatService: chatService}
}

func (h *ArticleHandler) List(c *gin.Context) {
	articles, err := h.chatService.ListArticles()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to get articles")
		return
	}
	response.OK(c, articles)
}
