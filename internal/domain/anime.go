package domain

import (
	"errors"
	"strconv"
)

// ErrAnimeNotFound is returned when an anime with the requested id does not exist.
var ErrAnimeNotFound = errors.New("anime not found")

// MsgAnimeNameEmpty is reported when an anime is submitted without a name.
const MsgAnimeNameEmpty = "The anime name cannot be empty"

// Anime is a catalogue entry.
type Anime struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AnimePostRequest is the payload accepted when creating an anime.
type AnimePostRequest struct {
	Name string `json:"name"`
}

// Validate reports a ValidationError if the request is not acceptable.
func (req AnimePostRequest) Validate() error {
	if req.Name == "" {
		return NewValidationError("name", MsgAnimeNameEmpty)
	}

	return nil
}

// AnimePutRequest is the payload accepted when replacing an existing anime.
type AnimePutRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Validate reports a ValidationError if the request is not acceptable.
func (req AnimePutRequest) Validate() error {
	var errs []error

	if req.ID <= 0 {
		errs = append(errs, NewValidationError("id", "The anime id must be a positive number"))
	}

	if req.Name == "" {
		errs = append(errs, NewValidationError("name", MsgAnimeNameEmpty))
	}

	return errors.Join(errs...)
}

// NewAnime builds an Anime, rejecting an empty name.
func NewAnime(id int64, name string) (Anime, error) {
	if name == "" {
		return Anime{}, NewValidationError("name", MsgAnimeNameEmpty)
	}

	return Anime{ID: id, Name: name}, nil
}

// ParseAnimeID parses a path segment into an anime id.
func ParseAnimeID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewValidationError("id", "The anime id must be a positive number")
	}

	return id, nil
}
