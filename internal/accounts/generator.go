package accounts

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/ybenmoussa/signup-monitor/internal/models"
)

const (
	orderIDChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderIDLength = 5

	passwordLowercase = "abcdefghijklmnopqrstuvwxyz"
	passwordUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordDigits    = "0123456789"
	passwordSpecial   = "!@#$%^&*()"
)

var (
	sampleFirstNames = []string{
		"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
		"Linda", "David", "Elizabeth", "William", "Barbara", "Richard",
		"Susan", "Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen",
	}
	sampleLastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
		"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
		"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	}
	sampleCountries = []string{
		"United States", "United Kingdom", "Germany", "France", "Spain",
		"Italy", "Netherlands", "Poland", "Morocco", "Canada", "Australia",
		"Sweden", "Belgium", "Portugal", "Ireland",
	}
)

// Generator produces synthetic marketplace accounts.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator from a random source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Account generates a random account using the given email domain. A
// fresh user ID is minted when none is supplied.
func (g *Generator) Account(domain, userID string) *models.Account {
	if userID == "" {
		userID = uuid.NewString()
	}

	firstName := sampleFirstNames[g.rng.Intn(len(sampleFirstNames))]
	lastName := sampleLastNames[g.rng.Intn(len(sampleLastNames))]

	return &models.Account{
		OrderID:   g.OrderID(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     g.Email(firstName, lastName, domain),
		Password:  g.Password(),
		Country:   sampleCountries[g.rng.Intn(len(sampleCountries))],
		UserID:    userID,
		Suspended: false,
	}
}

// OrderID generates a 5-character order identifier from A-Z0-9.
func (g *Generator) OrderID() string {
	var b strings.Builder
	for i := 0; i < orderIDLength; i++ {
		b.WriteByte(orderIDChars[g.rng.Intn(len(orderIDChars))])
	}
	return b.String()
}

// Password generates a ten-character password: five lowercase, two
// uppercase, two digits and one special character, shuffled together.
func (g *Generator) Password() string {
	parts := g.shuffled(passwordLowercase)[:5] +
		g.shuffled(passwordUppercase)[:2] +
		g.shuffled(passwordDigits)[:2] +
		g.shuffled(passwordSpecial)[:1]
	return g.shuffled(parts)
}

// Email builds an address from either the first or last name, a
// two-digit suffix and the configured domain.
func (g *Generator) Email(firstName, lastName, domain string) string {
	name := firstName
	if g.rng.Intn(2) == 0 {
		name = lastName
	}
	return fmt.Sprintf("%s%d@%s", strings.ToLower(name), g.rng.Intn(100), domain)
}

func (g *Generator) shuffled(s string) string {
	runes := []rune(s)
	g.rng.Shuffle(len(runes), func(i, j int) {
		runes[i], runes[j] = runes[j], runes[i]
	})
	return string(runes)
}
