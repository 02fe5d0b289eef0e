package models

import "time"

// UserProfile is the slim read this service needs from the profiles table:
// enough to score compatibility. Profile CRUD lives elsewhere.
type UserProfile struct {
	UserID    string   `dynamodbav:"userId" json:"userId"`
	FullName  string   `dynamodbav:"fullName,omitempty" json:"fullName,omitempty"`
	Interests []string `dynamodbav:"interests,omitempty" json:"interests,omitempty"`
	DOB       string   `dynamodbav:"dob,omitempty" json:"dob,omitempty"`
}

// Age derives the user's age in whole years from the stored date of birth,
// or -1 when the date is absent or unparseable.
func (p *UserProfile) Age(now time.Time) int {
	if p.DOB == "" {
		return -1
	}
	dob, err := time.Parse("2006-01-02", p.DOB)
	if err != nil {
		return -1
	}
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	return years
}
