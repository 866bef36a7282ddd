package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

type publicKeyResponse struct {
	Key string `json:"key"`
}

type encryptRequest struct {
	RSA   string `json:"rsa"`
	Plain string `json:"plain"`
}

type encryptResponse struct {
	Encrypt string `json:"encrypt"`
}

type signInRequest struct {
	RSA      string `json:"rsa"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	AccessToken string `json:"accessToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type infoResponse struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Nickname string        `json:"nickname"`
	Gender   models.Gender `json:"gender"`
	Role     models.Role   `json:"role"`
	SignAt   *time.Time    `json:"signAt"`
}

type updateInfoRequest struct {
	RSA      string        `json:"rsa"`
	Nickname string        `json:"nickname"`
	Gender   models.Gender `json:"gender"`
}

type changePasswordRequest struct {
	RSA            string `json:"rsa"`
	OriginPassword string `json:"originPassword"`
	Password       string `json:"password"`
}

var empty = struct{}{}

func (s *HTTPServer) publicKey(w http.ResponseWriter, r *http.Request) {
	key, err := s.sessions.PublicKey(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicKeyResponse{Key: key})
}

func (s *HTTPServer) encrypt(w http.ResponseWriter, r *http.Request) {
	var req encryptRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.sessions.Encrypt(r.Context(), req.RSA, req.Plain)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, encryptResponse{Encrypt: out})
}

func (s *HTTPServer) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tokens, err := s.sessions.SignIn(r.Context(), services.SignInRequest{
		RSA:      req.RSA,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// refresh takes the refresh token as bearer and the current access token in
// the body.
func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, err := auth.ExtractFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.AccessToken == "" {
		s.writeError(w, r, common.ErrMissingToken)
		return
	}

	access, err := s.sessions.Refresh(r.Context(), refreshToken, req.AccessToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: access})
}

func (s *HTTPServer) signOut(w http.ResponseWriter, r *http.Request) {
	rec, _ := AccessFrom(r.Context())
	if err := s.sessions.SignOut(r.Context(), rec.SubjectID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, empty)
}

func (s *HTTPServer) info(w http.ResponseWriter, r *http.Request) {
	rec, _ := AccessFrom(r.Context())
	account, err := s.sessions.Info(r.Context(), rec.SubjectID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, infoResponse{
		ID:       account.ID,
		Username: account.Username,
		Nickname: account.Nickname,
		Gender:   account.Gender,
		Role:     account.Role,
		SignAt:   account.SignAt,
	})
}

func (s *HTTPServer) updateInfo(w http.ResponseWriter, r *http.Request) {
	var req updateInfoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, _ := AccessFrom(r.Context())
	err := s.sessions.UpdateInfo(r.Context(), rec.SubjectID, services.UpdateInfoRequest{
		RSA:      req.RSA,
		Nickname: req.Nickname,
		Gender:   req.Gender,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, empty)
}

func (s *HTTPServer) withdraw(w http.ResponseWriter, r *http.Request) {
	rec, _ := AccessFrom(r.Context())
	if err := s.sessions.Withdraw(r.Context(), rec.SubjectID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, empty)
}

func (s *HTTPServer) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, _ := AccessFrom(r.Context())
	err := s.sessions.ChangePassword(r.Context(), rec.SubjectID, services.ChangePasswordRequest{
		RSA:            req.RSA,
		OriginPassword: req.OriginPassword,
		Password:       req.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, empty)
}
