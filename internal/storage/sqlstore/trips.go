package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tripledger/internal/models"
	"github.com/mmynk/tripledger/internal/storage"
)

// CreateTrip inserts a trip. Trips belong to the surrounding planner; this
// exists for seeding and tests.
func (s *Store) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}

	_, err := s.exec(ctx, s.db,
		`INSERT INTO trips (id, name, owner_id, currency, budget, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		trip.ID, trip.Name, trip.OwnerID, trip.Currency, nullDecimal(trip.Budget), trip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

// AddTripMember records userID's collaborator status on a trip, replacing any
// previous status.
func (s *Store) AddTripMember(ctx context.Context, tripID, userID string, status models.MemberStatus) error {
	_, err := s.exec(ctx, s.db,
		`INSERT INTO trip_members (trip_id, user_id, status, joined_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (trip_id, user_id) DO UPDATE SET status = excluded.status`,
		tripID, userID, string(status), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to add trip member: %w", err)
	}
	return nil
}

// GetTrip retrieves a trip by ID.
func (s *Store) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	var (
		trip   models.Trip
		budget decimal.NullDecimal
	)

	err := s.queryRow(ctx, s.db,
		`SELECT id, name, owner_id, currency, budget, created_at FROM trips WHERE id = ?`,
		tripID,
	).Scan(&trip.ID, &trip.Name, &trip.OwnerID, &trip.Currency, &budget, &trip.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	if budget.Valid {
		b := budget.Decimal
		trip.Budget = &b
	}
	return &trip, nil
}

// IsActiveParticipant reports whether userID owns the trip or is an accepted collaborator.
func (s *Store) IsActiveParticipant(ctx context.Context, tripID, userID string) (bool, error) {
	var one int
	err := s.queryRow(ctx, s.db,
		`SELECT 1 FROM trips WHERE id = ? AND owner_id = ?
		 UNION ALL
		 SELECT 1 FROM trip_members WHERE trip_id = ? AND user_id = ? AND status = ?
		 LIMIT 1`,
		tripID, userID, tripID, userID, string(models.MemberAccepted),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return true, nil
}

// ListActiveParticipants returns the owner followed by accepted collaborators.
func (s *Store) ListActiveParticipants(ctx context.Context, tripID string) ([]string, error) {
	trip, err := s.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	rows, err := s.query(ctx, s.db,
		`SELECT user_id FROM trip_members
		 WHERE trip_id = ? AND status = ? AND user_id <> ?
		 ORDER BY joined_at, user_id`,
		tripID, string(models.MemberAccepted), trip.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := []string{trip.OwnerID}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}
