package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lxtrip/holdbroker/internal/clock"
	"lxtrip/holdbroker/internal/model"
	"lxtrip/holdbroker/internal/repository"
)

const DefaultHoldTTL = 600 * time.Second

type CreateHoldInput struct {
	OfferID       string
	UserID        string
	SupplierPrice float64
}

type CreateHoldResult struct {
	HoldID    string `json:"holdId"`
	Total     int64  `json:"total"`
	ExpiresIn int64  `json:"expiresIn"`
}

type ConfirmResult struct {
	Success    bool   `json:"success"`
	BookingRef string `json:"bookingRef"`
}

// HoldService owns the hold lifecycle: HELD on create, BOOKED on the one
// confirmation that removes it from the store, gone on TTL expiry.
type HoldService interface {
	Create(ctx context.Context, in CreateHoldInput) (*CreateHoldResult, error)
	Confirm(ctx context.Context, holdID, paymentReference string) (*ConfirmResult, error)
	Get(ctx context.Context, holdID string) (*model.Hold, error)
}

type holdService struct {
	store   repository.StateStore
	clock   clock.Clock
	logger  *zap.Logger
	pricer  Pricer
	holdTTL time.Duration
	newRef  BookingRefGenerator
}

type HoldServiceOption func(*holdService)

// WithHoldTTL overrides the lifetime of new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *holdService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

func WithMarkupRate(rate float64) HoldServiceOption {
	return func(s *holdService) {
		if rate >= 0 {
			s.pricer = NewPricer(rate)
		}
	}
}

func WithBookingRefGenerator(gen BookingRefGenerator) HoldServiceOption {
	return func(s *holdService) {
		if gen != nil {
			s.newRef = gen
		}
	}
}

func NewHoldService(store repository.StateStore, clk clock.Clock, logger *zap.Logger, opts ...HoldServiceOption) HoldService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &holdService{
		store:   store,
		clock:   clk,
		logger:  logger,
		pricer:  NewPricer(DefaultMarkupRate),
		holdTTL: DefaultHoldTTL,
		newRef:  NewBookingRef,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *holdService) Create(ctx context.Context, in CreateHoldInput) (*CreateHoldResult, error) {
	offerID := strings.TrimSpace(in.OfferID)
	if offerID == "" {
		return nil, ErrOfferIDRequired
	}
	quote, err := s.pricer.Quote(in.SupplierPrice)
	if err != nil {
		return nil, err
	}

	hold := model.Hold{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		OfferID:       offerID,
		SupplierPrice: quote.SupplierPrice,
		Markup:        quote.Markup,
		Total:         quote.Total,
		Status:        model.HoldStatusHeld,
		CreatedAt:     s.clock.Now(),
	}

	raw, err := json.Marshal(hold)
	if err != nil {
		return nil, fmt.Errorf("encode hold: %w", err)
	}
	if err := s.store.Set(ctx, model.HoldKey(hold.ID), raw, s.holdTTL); err != nil {
		return nil, fmt.Errorf("store hold: %w", err)
	}

	s.logger.Info("hold created",
		zap.String("hold_id", hold.ID),
		zap.String("offer_id", hold.OfferID),
		zap.Int64("total", hold.Total),
	)

	return &CreateHoldResult{
		HoldID:    hold.ID,
		Total:     hold.Total,
		ExpiresIn: int64(s.holdTTL / time.Second),
	}, nil
}

func (s *holdService) Confirm(ctx context.Context, holdID, paymentReference string) (*ConfirmResult, error) {
	holdID = strings.TrimSpace(holdID)
	if holdID == "" {
		return nil, ErrHoldIDRequired
	}
	if strings.TrimSpace(paymentReference) == "" {
		return nil, ErrPaymentReferenceRequired
	}

	key := model.HoldKey(holdID)
	hold, raw, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if hold.Status != model.HoldStatusHeld {
		return nil, ErrInvalidHoldState
	}

	ref, err := s.newRef()
	if err != nil {
		return nil, err
	}
	hold.Status = model.HoldStatusBooked
	hold.BookingRef = ref

	// Only the caller whose delete lands owns the transition; a concurrent
	// confirm or an expiry in between leaves nothing to finalize.
	deleted, err := s.store.CompareAndDelete(ctx, key, raw)
	if err != nil {
		return nil, fmt.Errorf("finalize hold: %w", err)
	}
	if !deleted {
		return nil, ErrHoldNotFound
	}

	s.logger.Info("hold booked",
		zap.String("hold_id", hold.ID),
		zap.String("booking_ref", hold.BookingRef),
		zap.String("payment_reference", paymentReference),
	)

	return &ConfirmResult{Success: true, BookingRef: hold.BookingRef}, nil
}

func (s *holdService) Get(ctx context.Context, holdID string) (*model.Hold, error) {
	holdID = strings.TrimSpace(holdID)
	if holdID == "" {
		return nil, ErrHoldIDRequired
	}
	hold, _, err := s.load(ctx, model.HoldKey(holdID))
	if err != nil {
		return nil, err
	}
	return hold, nil
}

func (s *holdService) load(ctx context.Context, key string) (*model.Hold, []byte, error) {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return nil, nil, ErrHoldNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load hold: %w", err)
	}

	var hold model.Hold
	if err := json.Unmarshal(raw, &hold); err != nil {
		return nil, nil, fmt.Errorf("decode hold %s: %w", key, err)
	}
	return &hold, raw, nil
}
