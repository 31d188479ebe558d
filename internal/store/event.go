package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/event"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Event is one recorded snapshot with its hands.
type Event struct {
	ID        string
	Snapshot  event.Snapshot
	CreatedAt time.Time
}

// EventRepository provides access to the recorded event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Insert records a snapshot and returns its generated ID.
func (r *EventRepository) Insert(snap event.Snapshot) (string, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.Exec(`INSERT INTO events (id, created_at) VALUES (?, ?)`, id, time.Now()); err != nil {
		return "", err
	}

	for _, hand := range snap.Hands {
		var gesture any
		if hand.Gesture != event.GestureNone {
			gesture = string(hand.Gesture)
		}
		_, err := tx.Exec(
			`INSERT INTO event_hands (event_id, label, thumb, index_finger, middle, ring, pinky, gesture)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, strings.ToLower(string(hand.Label)),
			hand.Fingers[0], hand.Fingers[1], hand.Fingers[2], hand.Fingers[3], hand.Fingers[4],
			gesture,
		)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Get returns one recorded event by ID.
func (r *EventRepository) Get(id string) (*Event, error) {
	var ev Event
	err := r.db.QueryRow(
		`SELECT id, created_at FROM events WHERE id = ?`, id,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadHands(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Recent returns the most recently recorded events, newest first.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, created_at FROM events ORDER BY created_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, ev := range events {
		if err := r.loadHands(ev); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// Count returns the number of recorded events.
func (r *EventRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

func (r *EventRepository) loadHands(ev *Event) error {
	rows, err := r.db.Query(
		`SELECT label, thumb, index_finger, middle, ring, pinky, gesture
		 FROM event_hands WHERE event_id = ? ORDER BY label`, ev.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var label string
		var hand event.HandState
		var gesture sql.NullString
		err := rows.Scan(&label,
			&hand.Fingers[0], &hand.Fingers[1], &hand.Fingers[2], &hand.Fingers[3], &hand.Fingers[4],
			&gesture)
		if err != nil {
			return err
		}
		if label == "left" {
			hand.Label = event.Left
		} else {
			hand.Label = event.Right
		}
		if gesture.Valid {
			hand.Gesture = event.Gesture(gesture.String)
		}
		ev.Snapshot.Hands = append(ev.Snapshot.Hands, hand)
	}
	return rows.Err()
}
