package serverutils

// BaseResponse is the envelope every JSON endpoint answers with.
type BaseResponse[T any] struct {
	Status string `json:"status"`
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Data   T      `json:"data,omitempty"`
}

func SuccessResponse[T any](msg string, data T) BaseResponse[T] {
	return BaseResponse[T]{
		Status: "success",
		Code:   200,
		Msg:    msg,
		Data:   data,
	}
}

func ErrorResponse(code int, msg string) BaseResponse[any] {
	return BaseResponse[any]{
		Status: "fail",
		Code:   code,
		Msg:    msg,
	}
}
