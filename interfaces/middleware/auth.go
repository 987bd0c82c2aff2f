package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/shopspring/decimal"
	"subtitle-credit/domain/dto"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// Auth validates the bearer JWT issued by the auth service and makes sure the
// caller has a ledger row before any handler runs.
func Auth(userRepository repository.IUser, secretKey string, signupCredits decimal.Decimal) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorization := ctx.GetHeader("Authorization")
		if authorization == "" {
			unauthorized(ctx, "Unauthorized")
			return
		}
		auth := strings.Split(authorization, "Bearer ")
		if len(auth) != 2 || auth[1] == "" {
			unauthorized(ctx, "Unauthorized")
			return
		}

		userClaims, token, err := getClaim(auth[1], secretKey)
		if err != nil || token == nil || !token.Valid {
			unauthorized(ctx, reason(err))
			return
		}
		if userClaims.UserID == "" {
			unauthorized(ctx, "token has no subject")
			return
		}

		if _, err := userRepository.EnsureUser(ctx.Request.Context(), userClaims.UserID, userClaims.Email, signupCredits); err != nil {
			logger.FromContext(ctx.Request.Context()).WithField("error", err).Error("Error while ensuring user")
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, dto.Res{
				StatusCode: http.StatusInternalServerError,
				Message:    "internal server error",
			})
			return
		}

		ctx.Set(ContextUserID, userClaims.UserID)
		ctx.Set(ContextEmail, userClaims.Email)
		ctx.Next()
	}
}

// Identity returns the caller set by Auth.
func Identity(ctx *gin.Context) model.Identity {
	return model.Identity{
		UserID: ctx.GetString(ContextUserID),
		Email:  ctx.GetString(ContextEmail),
	}
}

func unauthorized(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Res{
		StatusCode: http.StatusUnauthorized,
		Message:    message,
	})
}

func reason(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			return "Timing is everything"
		}
		return fmt.Sprintf("Couldn't handle this token: %v", err)
	}
	return "Unauthorized"
}

func getClaim(raw string, secretKey string) (model.UserClaims, *jwt.Token, error) {
	var userClaims model.UserClaims
	token, err := jwt.ParseWithClaims(
		raw,
		&userClaims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		},
	)
	return userClaims, token, err
}
