package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pkordes/travel-journal/internal/domain"
)

// ErrDuplicate is returned by CreateUser when the username or email is
// already taken.
var ErrDuplicate = errors.New("already exists")

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS trips (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    location    TEXT NOT NULL,
    date_from   TEXT NOT NULL,
    date_to     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS experiences (
    id          TEXT PRIMARY KEY,
    trip_id     TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    date        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS photos (
    id            TEXT PRIMARY KEY,
    trip_id       TEXT REFERENCES trips(id) ON DELETE CASCADE,
    experience_id TEXT REFERENCES experiences(id) ON DELETE CASCADE,
    image_url     TEXT NOT NULL,
    CHECK ((trip_id IS NULL) != (experience_id IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_trips_user_id ON trips(user_id);
CREATE INDEX IF NOT EXISTS idx_experiences_trip_id ON experiences(trip_id);
CREATE INDEX IF NOT EXISTS idx_photos_trip_id ON photos(trip_id);
CREATE INDEX IF NOT EXISTS idx_photos_experience_id ON photos(experience_id);
`

// Store is the SQLite persistence layer for the dev server. Every query is
// scoped by user so one dev account cannot read or mutate another's data.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the SQLite database at path and initializes the
// schema. Pass ":memory:" for a throwaway database.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("devserver.OpenStore: %w", err)
	}
	// A single connection keeps the foreign_keys pragma in effect for every
	// statement and sidesteps SQLITE_BUSY under the dev server's light load.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("devserver.OpenStore: ping: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("devserver.OpenStore: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("devserver.OpenStore: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---- users -----------------------------------------------------------------

// CreateUser inserts a new account and returns its id.
// Returns ErrDuplicate when the username or email is taken.
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash) VALUES (?, ?, ?, ?)`,
		id.String(), username, email, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return uuid.Nil, fmt.Errorf("%w: account", ErrDuplicate)
		}
		return uuid.Nil, fmt.Errorf("devserver.Store.CreateUser: %w", err)
	}
	return id, nil
}

// UserByUsername returns the id and password hash for an account.
// Returns domain.ErrNotFound when no such account exists.
func (s *Store) UserByUsername(ctx context.Context, username string) (uuid.UUID, string, error) {
	var (
		idStr string
		hash  string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE username = ?`, username).Scan(&idStr, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, "", domain.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("devserver.Store.UserByUsername: %w", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("devserver.Store.UserByUsername: %w", err)
	}
	return id, hash, nil
}

// ---- trips -----------------------------------------------------------------

// CreateTrip inserts a trip for userID and returns the saved record.
func (s *Store) CreateTrip(ctx context.Context, userID uuid.UUID, d domain.TripDraft) (domain.Trip, error) {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trips (id, user_id, title, description, location, date_from, date_to)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), userID.String(), d.Title, d.Description, d.Location,
		d.DateFrom.Format(time.DateOnly), d.DateTo.Format(time.DateOnly))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("devserver.Store.CreateTrip: %w", err)
	}
	return s.TripByID(ctx, userID, id)
}

// TripByID returns a full trip, including its experiences (ordered by date)
// and photos. Returns domain.ErrNotFound when the trip does not exist or
// belongs to another user.
func (s *Store) TripByID(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.scanTrip(s.db.QueryRowContext(ctx,
		`SELECT id, title, description, location, date_from, date_to
		 FROM trips WHERE id = ? AND user_id = ?`, id.String(), userID.String()))
	if err != nil {
		return domain.Trip{}, err
	}

	trip.Experiences, err = s.experiencesByTrip(ctx, id)
	if err != nil {
		return domain.Trip{}, err
	}
	trip.Photos, err = s.photosByOwner(ctx, "trip_id", id)
	if err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

// TripsByUser returns the user's trip summaries ordered by start date
// descending. Experiences and photos are not loaded; the detail screen
// fetches them.
func (s *Store) TripsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, location, date_from, date_to
		 FROM trips WHERE user_id = ? ORDER BY date_from DESC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("devserver.Store.TripsByUser: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		trip, err := s.scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// UpdateTrip overwrites the mutable fields of the trip identified by d.ID.
// Returns domain.ErrNotFound when it does not exist under userID.
func (s *Store) UpdateTrip(ctx context.Context, userID uuid.UUID, d domain.TripDraft) (domain.Trip, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE trips SET title = ?, description = ?, location = ?, date_from = ?, date_to = ?
		 WHERE id = ? AND user_id = ?`,
		d.Title, d.Description, d.Location,
		d.DateFrom.Format(time.DateOnly), d.DateTo.Format(time.DateOnly),
		d.ID.String(), userID.String())
	if err != nil {
		return domain.Trip{}, fmt.Errorf("devserver.Store.UpdateTrip: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Trip{}, domain.ErrNotFound
	}
	return s.TripByID(ctx, userID, d.ID)
}

// DeleteTrip removes a trip; the schema cascades to its experiences and
// photos. Returns the image URLs of every removed photo so the caller can
// delete the files, and domain.ErrNotFound when the trip does not exist
// under userID.
func (s *Store) DeleteTrip(ctx context.Context, userID, id uuid.UUID) ([]string, error) {
	images, err := s.collectImages(ctx,
		`SELECT image_url FROM photos
		 WHERE trip_id = ?
		    OR experience_id IN (SELECT id FROM experiences WHERE trip_id = ?)`,
		id.String(), id.String())
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM trips WHERE id = ? AND user_id = ?`, id.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("devserver.Store.DeleteTrip: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return images, nil
}

// TripSpan returns the date range of a trip for server-side validation of
// experience dates.
func (s *Store) TripSpan(ctx context.Context, userID, tripID uuid.UUID) (from, to domain.Date, err error) {
	var fromStr, toStr string
	err = s.db.QueryRowContext(ctx,
		`SELECT date_from, date_to FROM trips WHERE id = ? AND user_id = ?`,
		tripID.String(), userID.String()).Scan(&fromStr, &toStr)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Date{}, domain.Date{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Date{}, domain.Date{}, fmt.Errorf("devserver.Store.TripSpan: %w", err)
	}
	if from, err = domain.ParseDate(fromStr); err != nil {
		return domain.Date{}, domain.Date{}, err
	}
	if to, err = domain.ParseDate(toStr); err != nil {
		return domain.Date{}, domain.Date{}, err
	}
	return from, to, nil
}

// ---- experiences -----------------------------------------------------------

// CreateExperience inserts an experience under d.TripID and returns the
// saved record. Returns domain.ErrNotFound when the parent trip does not
// exist under userID.
func (s *Store) CreateExperience(ctx context.Context, userID uuid.UUID, d domain.ExperienceDraft) (domain.Experience, error) {
	if _, _, err := s.TripSpan(ctx, userID, d.TripID); err != nil {
		return domain.Experience{}, err
	}
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO experiences (id, trip_id, title, description, date) VALUES (?, ?, ?, ?, ?)`,
		id.String(), d.TripID.String(), d.Title, d.Description, d.Date.Format(time.DateOnly))
	if err != nil {
		return domain.Experience{}, fmt.Errorf("devserver.Store.CreateExperience: %w", err)
	}
	return s.ExperienceByID(ctx, userID, id)
}

// ExperienceByID returns a full experience including its photos.
// Returns domain.ErrNotFound when it does not exist under userID.
func (s *Store) ExperienceByID(ctx context.Context, userID, id uuid.UUID) (domain.Experience, error) {
	exp, err := s.scanExperience(s.db.QueryRowContext(ctx,
		`SELECT e.id, e.trip_id, e.title, e.description, e.date
		 FROM experiences e JOIN trips t ON t.id = e.trip_id
		 WHERE e.id = ? AND t.user_id = ?`, id.String(), userID.String()))
	if err != nil {
		return domain.Experience{}, err
	}
	exp.Photos, err = s.photosByOwner(ctx, "experience_id", id)
	if err != nil {
		return domain.Experience{}, err
	}
	return exp, nil
}

// UpdateExperience overwrites the mutable fields of the experience identified
// by d.ID. The trip it belongs to does not change.
func (s *Store) UpdateExperience(ctx context.Context, userID uuid.UUID, d domain.ExperienceDraft) (domain.Experience, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE experiences SET title = ?, description = ?, date = ?
		 WHERE id = ? AND trip_id IN (SELECT id FROM trips WHERE user_id = ?)`,
		d.Title, d.Description, d.Date.Format(time.DateOnly),
		d.ID.String(), userID.String())
	if err != nil {
		return domain.Experience{}, fmt.Errorf("devserver.Store.UpdateExperience: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Experience{}, domain.ErrNotFound
	}
	return s.ExperienceByID(ctx, userID, d.ID)
}

// DeleteExperience removes an experience, cascading to its photos. Returns
// the removed photos' image URLs for file cleanup.
func (s *Store) DeleteExperience(ctx context.Context, userID, id uuid.UUID) ([]string, error) {
	images, err := s.collectImages(ctx,
		`SELECT image_url FROM photos WHERE experience_id = ?`, id.String())
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM experiences
		 WHERE id = ? AND trip_id IN (SELECT id FROM trips WHERE user_id = ?)`,
		id.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("devserver.Store.DeleteExperience: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrNotFound
	}
	return images, nil
}

// ExperienceTripID returns the parent trip of an experience, for validating
// uploads tagged with an experienceId.
func (s *Store) ExperienceTripID(ctx context.Context, userID, id uuid.UUID) (uuid.UUID, error) {
	var tripStr string
	err := s.db.QueryRowContext(ctx,
		`SELECT e.trip_id FROM experiences e JOIN trips t ON t.id = e.trip_id
		 WHERE e.id = ? AND t.user_id = ?`, id.String(), userID.String()).Scan(&tripStr)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, domain.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("devserver.Store.ExperienceTripID: %w", err)
	}
	return uuid.Parse(tripStr)
}

// ---- photos ----------------------------------------------------------------

// InsertPhoto records a photo against its owner. The owner must exist under
// userID or domain.ErrNotFound is returned.
func (s *Store) InsertPhoto(ctx context.Context, userID uuid.UUID, owner domain.PhotoOwner, imageURL string) (domain.Photo, error) {
	var tripID, expID any
	switch owner.Kind {
	case domain.OwnerTrip:
		if _, _, err := s.TripSpan(ctx, userID, owner.ID); err != nil {
			return domain.Photo{}, err
		}
		tripID = owner.ID.String()
	case domain.OwnerExperience:
		if _, err := s.ExperienceTripID(ctx, userID, owner.ID); err != nil {
			return domain.Photo{}, err
		}
		expID = owner.ID.String()
	}

	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO photos (id, trip_id, experience_id, image_url) VALUES (?, ?, ?, ?)`,
		id.String(), tripID, expID, imageURL)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("devserver.Store.InsertPhoto: %w", err)
	}
	return domain.Photo{ID: id, ImageURL: imageURL}, nil
}

// DeletePhoto removes a photo record and returns its image URL for file
// cleanup. Returns domain.ErrNotFound when the photo does not exist under
// userID.
func (s *Store) DeletePhoto(ctx context.Context, userID, id uuid.UUID) (string, error) {
	var imageURL string
	err := s.db.QueryRowContext(ctx,
		`SELECT p.image_url FROM photos p
		 LEFT JOIN trips t ON t.id = p.trip_id
		 LEFT JOIN experiences e ON e.id = p.experience_id
		 LEFT JOIN trips te ON te.id = e.trip_id
		 WHERE p.id = ? AND COALESCE(t.user_id, te.user_id) = ?`,
		id.String(), userID.String()).Scan(&imageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("devserver.Store.DeletePhoto: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id.String()); err != nil {
		return "", fmt.Errorf("devserver.Store.DeletePhoto: %w", err)
	}
	return imageURL, nil
}

// ---- scanning helpers ------------------------------------------------------

// row is the single-row subset shared by *sql.Row and *sql.Rows.
type row interface {
	Scan(dest ...any) error
}

func (s *Store) scanTrip(r row) (domain.Trip, error) {
	var (
		trip            domain.Trip
		idStr, from, to string
	)
	err := r.Scan(&idStr, &trip.Title, &trip.Description, &trip.Location, &from, &to)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trip{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("devserver: scan trip: %w", err)
	}
	if trip.ID, err = uuid.Parse(idStr); err != nil {
		return domain.Trip{}, fmt.Errorf("devserver: scan trip: %w", err)
	}
	if trip.DateFrom, err = domain.ParseDate(from); err != nil {
		return domain.Trip{}, err
	}
	if trip.DateTo, err = domain.ParseDate(to); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

func (s *Store) scanExperience(r row) (domain.Experience, error) {
	var (
		exp                 domain.Experience
		idStr, tripStr, day string
	)
	err := r.Scan(&idStr, &tripStr, &exp.Title, &exp.Description, &day)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Experience{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Experience{}, fmt.Errorf("devserver: scan experience: %w", err)
	}
	if exp.ID, err = uuid.Parse(idStr); err != nil {
		return domain.Experience{}, fmt.Errorf("devserver: scan experience: %w", err)
	}
	if exp.TripID, err = uuid.Parse(tripStr); err != nil {
		return domain.Experience{}, fmt.Errorf("devserver: scan experience: %w", err)
	}
	if exp.Date, err = domain.ParseDate(day); err != nil {
		return domain.Experience{}, err
	}
	return exp, nil
}

func (s *Store) experiencesByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Experience, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trip_id, title, description, date
		 FROM experiences WHERE trip_id = ? ORDER BY date ASC`, tripID.String())
	if err != nil {
		return nil, fmt.Errorf("devserver: experiences by trip: %w", err)
	}
	defer rows.Close()

	exps := []domain.Experience{}
	for rows.Next() {
		exp, err := s.scanExperience(rows)
		if err != nil {
			return nil, err
		}
		exps = append(exps, exp)
	}
	return exps, rows.Err()
}

func (s *Store) photosByOwner(ctx context.Context, column string, ownerID uuid.UUID) ([]domain.Photo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, image_url FROM photos WHERE `+column+` = ? ORDER BY rowid ASC`, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("devserver: photos by owner: %w", err)
	}
	defer rows.Close()

	photos := []domain.Photo{}
	for rows.Next() {
		var (
			photo domain.Photo
			idStr string
		)
		if err := rows.Scan(&idStr, &photo.ImageURL); err != nil {
			return nil, fmt.Errorf("devserver: photos by owner: %w", err)
		}
		if photo.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("devserver: photos by owner: %w", err)
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (s *Store) collectImages(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("devserver: collect images: %w", err)
	}
	defer rows.Close()

	var images []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("devserver: collect images: %w", err)
		}
		images = append(images, u)
	}
	return images, rows.Err()
}
