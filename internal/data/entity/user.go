package entity

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// OnlyPreference maps a gender to the ride preference reserved for it.
func (g Gender) OnlyPreference() (GenderPreference, bool) {
	switch g {
	case GenderMale:
		return GenderPreferenceMaleOnly, true
	case GenderFemale:
		return GenderPreferenceFemaleOnly, true
	}
	return "", false
}

// User is the read-only profile projection the ride engine displays.
type User struct {
	Base
	FirstName    string  `db:"first_name"`
	LastName     string  `db:"last_name"`
	Email        string  `db:"email"`
	Phone        *string `db:"phone_number"`
	Gender       Gender  `db:"gender"`
	FacebookURL  *string `db:"facebook_url"`
	InstagramURL *string `db:"instagram_url"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// ShortName renders "Amine B." style names for public listings.
func (u *User) ShortName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + string([]rune(u.LastName)[:1]) + "."
}
