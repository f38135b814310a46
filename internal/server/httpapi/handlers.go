package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mpetrovs/spendvault/internal/common"
	"github.com/mpetrovs/spendvault/internal/server/services"
)

type startLoginRequest struct {
	Email string `json:"email"`
}

type sessionResponse struct {
	User      userDTO `json:"user"`
	SessionID string  `json:"session_id"`
}

func (s *Server) startLogin(c echo.Context) error {
	var req startLoginRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}

	user, token, err := s.sessions.StartLogin(c.Request().Context(), req.Email)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse{User: toUserDTO(user), SessionID: token})
}

type verifySessionRequest struct {
	authedRequest
	Code string `json:"code"`
}

func (s *Server) verifySession(c echo.Context) error {
	var req verifySessionRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}

	user, err := s.sessions.Verify(c.Request().Context(), req.SessionID, req.UserID, req.Code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": toUserDTO(user)})
}

func (s *Server) deleteSession(c echo.Context) error {
	var req authedRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}

	if err := s.sessions.Expire(c.Request().Context(), req.SessionID, req.UserID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type signupRequest struct {
	Email            string `json:"email"`
	EncryptedKeyPair string `json:"encrypted_key_pair"`
}

func (s *Server) signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}

	user, token, err := s.users.Signup(c.Request().Context(), req.Email, req.EncryptedKeyPair)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse{User: toUserDTO(user), SessionID: token})
}

type updateUserRequest struct {
	authedRequest
	Email            *string `json:"email"`
	Currency         *string `json:"currency"`
	EncryptedKeyPair *string `json:"encrypted_key_pair"`
	Code             string  `json:"code"`
}

func (s *Server) updateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}
	if !s.authorized(c, req.SessionID, req.UserID) {
		return nil
	}

	user, codeIssued, err := s.users.Update(c.Request().Context(), req.UserID, toUpdateRequest(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     !codeIssued,
		"code_issued": codeIssued,
		"user":        toUserDTO(user),
	})
}

func toUpdateRequest(req updateUserRequest) services.UpdateRequest {
	return services.UpdateRequest{
		Email:            req.Email,
		Currency:         req.Currency,
		EncryptedKeyPair: req.EncryptedKeyPair,
		Code:             req.Code,
	}
}

type deleteUserRequest struct {
	authedRequest
	Code string `json:"code"`
}

func (s *Server) deleteUser(c echo.Context) error {
	var req deleteUserRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, common.ErrValidation)
	}
	if !s.authorized(c, req.SessionID, req.UserID) {
		return nil
	}

	codeIssued, err := s.users.Delete(c.Request().Context(), req.UserID, req.Code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": !codeIssued, "code_issued": codeIssued})
}
