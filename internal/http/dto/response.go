package dto

// Response is the envelope every API endpoint answers with.
type Response struct {
	Result string `json:"result"`
	Msg    string `json:"msg"`
}

func Success() Response {
	return Response{Result: "success", Msg: ""}
}

func Error(msg string) Response {
	return Response{Result: "error", Msg: msg}
}
