package todoapi

import "time"

// Todo is a single todo item as exposed by the API.
type Todo struct {
	// ID is unique within the process and never reused.
	ID int

	// Text is the trimmed, non-empty description.
	Text string

	// Done reports whether the todo is completed.
	Done bool

	// CreatedAt is fixed when the todo is created.
	CreatedAt time.Time
}

// ChangeKind identifies the mutation described by a [Change].
//
// ChangeKind is a string type so it logs and serializes in a human-readable
// form while keeping type safety through the defined constants.
type ChangeKind string

const (
	// ChangeCreated is emitted after a todo is created.
	ChangeCreated ChangeKind = "created"

	// ChangeUpdated is emitted after an update changed at least one field.
	ChangeUpdated ChangeKind = "updated"

	// ChangeToggled is emitted after a todo's done flag was flipped.
	ChangeToggled ChangeKind = "toggled"

	// ChangeDeleted is emitted after a todo was deleted.
	ChangeDeleted ChangeKind = "deleted"

	// ChangeCleared is emitted after ClearCompleted removed at least one todo.
	ChangeCleared ChangeKind = "cleared"
)

// String returns the string representation of the kind.
func (k ChangeKind) String() string {
	return string(k)
}

// Change describes one successful mutation of the todo collection.
//
// Change values are delivered to callbacks registered with
// [WithChangeCallback]. Each callback receives its own copy.
type Change struct {
	// Kind is the mutation that happened.
	Kind ChangeKind

	// Todo is the affected todo as it was right after the mutation.
	// Nil for [ChangeCleared].
	Todo *Todo

	// Removed is the number of todos removed by [ChangeCleared].
	Removed int

	// At is when the change happened.
	At time.Time
}

// SeedTodo is a todo loaded into the collection when the app starts.
type SeedTodo struct {
	Text string
	Done bool
}

// ProfileUser is the user section of a [Profile].
type ProfileUser struct {
	Name string `json:"name"`
}

// Profile is the static "wrapped" summary served at /api/wrapped.
type Profile struct {
	User           ProfileUser `json:"user"`
	Rating         string      `json:"rating"`
	Mood           string      `json:"mood"`
	MoodEmoji      string      `json:"moodEmoji"`
	FavoriteSong   string      `json:"favoriteSong"`
	FavoriteArtist string      `json:"favoriteArtist"`
	FavoriteShow   string      `json:"favoriteShow"`
	MemeURL        string      `json:"memeUrl"`
	MemeCaption    string      `json:"memeCaption"`
}

// DefaultProfile returns the profile served when none is configured.
func DefaultProfile() Profile {
	return Profile{
		User:           ProfileUser{Name: "Your Name"},
		Rating:         "7.5/10",
		Mood:           "chaotic",
		MoodEmoji:      "🤪",
		FavoriteSong:   "APT.",
		FavoriteArtist: "ROSÉ & Bruno Mars",
		FavoriteShow:   "Severance",
		MemeURL:        "https://i.pinimg.com/736x/88/67/7c/88677ccb31ee20e8e34e33bdabf7a310.jpg",
		MemeCaption:    "This was the vibe all year 💯",
	}
}
