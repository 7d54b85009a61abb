package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/sendai-ikuei-track/site-server/internal/errors"
	"github.com/sendai-ikuei-track/site-server/internal/httputil"
)

const (
	MsgAuthenticated   = "認証成功"
	MsgContactAccepted = "お問い合わせを受け付けました"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apperrors.TooLarge()
		}
		return apperrors.ValidationError(apperrors.MsgInvalidRequest).WithCause(err)
	}
	return nil
}
