package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"wardrobeapi/errs"
	"wardrobeapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func GenerateUserToken(userPk string, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	return token.SignedString([]byte(secret))
}

func message(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"message": msg})
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// respondError maps domain errors to statuses. Anything unexpected goes to
// sentry and is answered with a generic message.
func respondError(c echo.Context, err error) error {
	var validationErr *errs.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return errorJSON(c, http.StatusBadRequest, validationErr.Msg)
	case errors.Is(err, errs.ErrValidation):
		return errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrUploadInProgress):
		return errorJSON(c, http.StatusConflict, "An upload is already being processed")
	case errors.Is(err, errs.ErrPremiumRequired):
		return errorJSON(c, http.StatusForbidden, "Suggested outfits are a premium feature")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errorJSON(c, http.StatusServiceUnavailable, "Request was cancelled")
	}
	sentry.CaptureException(err)
	c.Logger().Errorf("Unhandled error on %s: %v", c.Path(), err)
	return errorJSON(c, http.StatusInternalServerError, "Something went wrong, please try again")
}

// bindAndValidate binds the body and runs the struct validator, answering
// 400 itself. ok is false when a response was already written.
func bindAndValidate(c echo.Context, in interface{}) (bool, error) {
	if err := c.Bind(in); err != nil {
		return false, errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(in); err != nil {
		return false, errorJSON(c, http.StatusBadRequest, err.Error())
	}
	return true, nil
}

func intParam(c echo.Context, name string) (int, error) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errs.Validation(name + " must be a number")
	}
	return value, nil
}

// imageResolver turns bucket object keys into presigned read urls. Absolute
// and local urls are returned untouched.
type imageResolver struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	BucketName string
	Log        *logrus.Logger
}

func (r *imageResolver) resolve(ctx context.Context, objectKey string) string {
	if !services.IsObjectKey(objectKey) {
		return objectKey
	}
	url, err := r.URLCache.GetReadURL(ctx, objectKey)
	if err == nil {
		return url
	}

	r.Log.WithError(err).WithField("key", objectKey).Warn("url cache failed, presigning directly")
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("failure_type", "cache_system")
		scope.SetExtra("objectKey", objectKey)
		sentry.CaptureException(err)
	})

	fallbackURL, fallbackErr := r.AWSService.GetPresignedR2FileReadURL(ctx, r.BucketName, objectKey)
	if fallbackErr != nil {
		r.Log.WithError(fallbackErr).WithField("key", objectKey).Error("presign fallback failed")
		sentry.CaptureException(fallbackErr)
		return ""
	}
	return fallbackURL
}

// resolveAll resolves refs concurrently and returns the urls in input order.
func (r *imageResolver) resolveAll(ctx context.Context, refs []string) []string {
	urls := make([]string, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		if !services.IsObjectKey(ref) {
			urls[i] = ref
			continue
		}
		wg.Add(1)
		go func(index int, objectKey string) {
			defer wg.Done()
			urls[index] = r.resolve(ctx, objectKey)
		}(i, ref)
	}
	wg.Wait()
	return urls
}
