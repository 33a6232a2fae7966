package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"anoa.com/alumnihub/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const ticketAudience = "notifications"

// TicketService issues short-lived tickets that let a client open the push
// stream without sending its API key in a query string.
type TicketService interface {
	Issue(userID uuid.UUID) (string, time.Time, error)
	Verify(ticket string) (uuid.UUID, error)
}

type ticketService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTicketService(secret string, ttl time.Duration) TicketService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &ticketService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *ticketService) Issue(userID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{ticketAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign ticket: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *ticketService) Verify(ticket string) (uuid.UUID, error) {
	if ticket == "" {
		return uuid.Nil, apperror.New(http.StatusBadRequest, "Ticket is missing", apperror.ErrBadRequest)
	}

	token, err := jwt.ParseWithClaims(ticket, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithAudience(ticketAudience), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apperror.New(http.StatusUnauthorized, "Ticket has expired", apperror.ErrUnauthorized)
		}
		return uuid.Nil, apperror.New(http.StatusUnauthorized, "Invalid ticket", apperror.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, apperror.New(http.StatusUnauthorized, "Invalid ticket", apperror.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperror.New(http.StatusUnauthorized, "Invalid ticket", apperror.ErrUnauthorized)
	}
	return userID, nil
}
