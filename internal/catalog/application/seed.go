package application

import "github.com/dmehra2102/lesson-reservation/internal/catalog/domain"

const defaultSpaces = 5

// DefaultLessons returns fresh entries with new ids on every call.
func DefaultLessons() []domain.Entry {
	lessons := []struct {
		subject, location string
		price             int64
	}{
		{"Mathematics", "Port Louis", 1000},
		{"English Skills", "Rose-Hill", 900},
		{"Science Lab", "Curepipe", 950},
		{"History of Mauritius", "Moka", 800},
		{"Coding (Beginner)", "Ebène (Online)", 1200},
		{"Art & Craft", "Quatre Bornes", 700},
		{"Music – Ravanne", "Vacoas", 850},
		{"Sega Dance Basics", "Flic-en-Flac", 900},
		{"Robotics Club", "Grand Baie", 1500},
		{"PE & Fitness", "Beau-Bassin", 600},
	}
	out := make([]domain.Entry, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, domain.NewEntry(l.subject, l.location, l.price, defaultSpaces))
	}
	return out
}
