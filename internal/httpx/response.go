package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape shared by every endpoint:
// {success, token?, count?, pagination?, data?, msg?}.
type Envelope struct {
	Success    bool   `json:"success"`
	Token      string `json:"token,omitempty"`
	Count      *int   `json:"count,omitempty"`
	Pagination any    `json:"pagination,omitempty"`
	Data       any    `json:"data,omitempty"`
	Msg        string `json:"msg,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"success":false,"msg":"encode error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

// OK writes a {success:true, data} envelope with the given status.
func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// OKMsg writes a {success:true, data:<msg>} envelope, used by endpoints that
// only report an outcome ("Email Sent", "Password Changed").
func OKMsg(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: msg})
}

// List writes a collection envelope with count and optional pagination block.
func List(w http.ResponseWriter, count int, pagination any, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Count: &count, Pagination: pagination, Data: data})
}
