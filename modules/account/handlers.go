package account

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/dmitrymomot/todoapi/handler"
	"github.com/dmitrymomot/todoapi/pkg/auth"
	"github.com/dmitrymomot/todoapi/pkg/file"
	"github.com/dmitrymomot/todoapi/pkg/jwt"
	"github.com/dmitrymomot/todoapi/pkg/logger"
	"github.com/dmitrymomot/todoapi/pkg/validator"
)

// MaxAvatarSize is the largest accepted avatar upload.
const MaxAvatarSize = 5 << 20

// Service is the part of auth.Service the handlers use.
type Service interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	FederatedLogin(ctx context.Context, idToken string) (*auth.Session, error)
	FederatedLoginWithCode(ctx context.Context, code string) (*auth.Session, error)
	GetUser(ctx context.Context, userID string) (*auth.User, error)
	UpdateProfile(ctx context.Context, userID string, in auth.ProfileInput) (*auth.User, error)
}

// AttemptRecorder counts authentication attempts, e.g. metrics.Metrics.
type AttemptRecorder interface {
	RecordAuthAttempt(method string, success bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthAttempt(string, bool) {}

type registerRequest struct {
	Email      string                `json:"email" form:"email"`
	Password   string                `json:"password" form:"password"`
	Name       string                `json:"name" form:"name"`
	Avatar     string                `json:"avatar" form:"avatar"`
	AvatarFile *multipart.FileHeader `json:"-" file:"avatar"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type googleRequest struct {
	Token string `json:"token" form:"token"`
	Code  string `json:"code" form:"code"`
}

type profileRequest struct {
	Email      *string               `json:"email" form:"email"`
	Password   *string               `json:"password" form:"password"`
	Name       *string               `json:"name" form:"name"`
	Avatar     *string               `json:"avatar" form:"avatar"`
	AvatarFile *multipart.FileHeader `json:"-" file:"avatar"`
}

type userResponse struct {
	User *auth.User `json:"user"`
}

type handlers struct {
	svc      Service
	avatars  file.Storage
	recorder AttemptRecorder
	logger   *slog.Logger
}

func (h *handlers) register(ctx handler.Context, req registerRequest) handler.Response {
	in := auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Avatar:   req.Avatar,
	}
	var upload *file.File
	if req.AvatarFile != nil {
		f, err := h.saveAvatar(ctx, req.AvatarFile)
		if err != nil {
			return handler.Error(err)
		}
		upload = f
		in.Avatar = f.URL
	}

	session, err := h.svc.Register(ctx, in)
	h.recorder.RecordAuthAttempt("register", err == nil)
	if err != nil {
		if upload != nil {
			h.removeAvatar(ctx, upload.Key)
		}
		return handler.Error(err)
	}
	return handler.JSON(session, handler.WithJSONStatus(http.StatusCreated))
}

func (h *handlers) login(ctx handler.Context, req loginRequest) handler.Response {
	session, err := h.svc.Login(ctx, req.Email, req.Password)
	h.recorder.RecordAuthAttempt("password", err == nil)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(session)
}

func (h *handlers) google(ctx handler.Context, req googleRequest) handler.Response {
	if req.Token == "" && req.Code == "" {
		return handler.Error(validator.ValidationErrors{
			{Field: "token", Message: "field is required"},
		})
	}

	var (
		session *auth.Session
		err     error
	)
	if req.Token != "" {
		session, err = h.svc.FederatedLogin(ctx, req.Token)
	} else {
		session, err = h.svc.FederatedLoginWithCode(ctx, req.Code)
	}
	h.recorder.RecordAuthAttempt("google", err == nil)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(session)
}

func (h *handlers) updateProfile(ctx handler.Context, req profileRequest) handler.Response {
	userID, ok := jwt.UserIDFromContext(ctx)
	if !ok {
		return handler.Error(handler.ErrUnauthorized)
	}

	in := auth.ProfileInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Avatar:   req.Avatar,
	}

	// The current avatar is looked up first so a replaced upload can be removed.
	var previous string
	if h.avatars != nil && (req.AvatarFile != nil || req.Avatar != nil) {
		current, err := h.svc.GetUser(ctx, userID)
		if err != nil {
			return handler.Error(err)
		}
		previous = current.Avatar
	}

	var upload *file.File
	if req.AvatarFile != nil {
		f, err := h.saveAvatar(ctx, req.AvatarFile)
		if err != nil {
			return handler.Error(err)
		}
		upload = f
		in.Avatar = &f.URL
	}

	user, err := h.svc.UpdateProfile(ctx, userID, in)
	if err != nil {
		if upload != nil {
			h.removeAvatar(ctx, upload.Key)
		}
		return handler.Error(err)
	}

	if previous != "" && previous != user.Avatar {
		if key, ok := file.KeyFromURL(h.avatars, previous); ok {
			h.removeAvatar(ctx, key)
		}
	}
	return handler.JSON(userResponse{User: user})
}

func (h *handlers) me(ctx handler.Context, _ struct{}) handler.Response {
	userID, ok := jwt.UserIDFromContext(ctx)
	if !ok {
		return handler.Error(handler.ErrUnauthorized)
	}
	user, err := h.svc.GetUser(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(userResponse{User: user})
}

// logout is an acknowledgment only; tokens expire on their own.
func (h *handlers) logout(_ handler.Context, _ struct{}) handler.Response {
	return handler.Message("Logged out successfully")
}

func (h *handlers) saveAvatar(ctx context.Context, fh *multipart.FileHeader) (*file.File, error) {
	if h.avatars == nil {
		return nil, avatarError("uploads are disabled")
	}
	return file.SaveImage(ctx, h.avatars, fh, MaxAvatarSize)
}

// removeAvatar deletes a stored avatar. Failures are logged, not returned.
func (h *handlers) removeAvatar(ctx context.Context, key string) {
	if err := h.avatars.Delete(context.WithoutCancel(ctx), key); err != nil {
		h.logger.WarnContext(ctx, "failed to remove avatar",
			slog.String("key", key),
			logger.Error(err),
		)
	}
}
