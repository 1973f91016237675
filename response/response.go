// Package response 提供了统一的 HTTP 响应封装，并把 xerrors 业务错误映射为 HTTP 状态码。
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/knapsack/contextx"
	"github.com/wyfcoding/knapsack/xerrors"
)

// Body 统一响应体。成功时 code 为 0；错误响应附带请求 ID 便于对照服务端日志。
type Body struct {
	Code      int    `json:"code"`
	Msg       string `json:"msg"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Success 发送一个标准的成功响应：HTTP 200，业务码 0。
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Body{Code: 0, Msg: "success", Data: data})
}

// SuccessWithRawData 发送不包装 code 和 msg 的原始数据，用于健康检查等系统接口。
func SuccessWithRawData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error 发送错误响应。
// *xerrors.Error 使用其业务码与映射后的状态码；请求体超限映射为 413；其他错误兜底为 500 且不暴露内部细节。
func Error(c *gin.Context, err error) {
	if err == nil {
		Success(c, nil)
		return
	}

	var xe *xerrors.Error
	if errors.As(err, &xe) {
		c.JSON(xe.HTTPStatus(), Body{
			Code:      xe.Code,
			Msg:       xe.Message,
			Detail:    xe.Detail,
			RequestID: contextx.GetRequestID(c.Request.Context()),
		})
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		ErrorWithStatus(c, http.StatusRequestEntityTooLarge, "request body too large", err.Error())
		return
	}

	ErrorWithStatus(c, http.StatusInternalServerError, "internal server error", "")
}

// ErrorWithStatus 发送一个带有指定 HTTP 状态码、消息和详情的错误响应。
func ErrorWithStatus(c *gin.Context, status int, msg string, detail string) {
	c.JSON(status, Body{
		Code:      status,
		Msg:       msg,
		Detail:    detail,
		RequestID: contextx.GetRequestID(c.Request.Context()),
	})
}
