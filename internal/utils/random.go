package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/carelink-staffing/shift-core/backend/internal/domain"
)

var firstNames = []string{
	"Ada", "Ben", "Cara", "Dan", "Ella", "Femi", "Grace", "Hassan", "Isla", "Jack",
	"Kemi", "Liam", "Maya", "Noah", "Olu", "Priya", "Quinn", "Rosa", "Sam", "Tara",
}

var lastNames = []string{
	"Okafor", "Hale", "Singh", "Price", "Murphy", "Evans", "Khan", "Walsh", "Adeyemi", "Patel",
	"Hughes", "Mensah", "Clarke", "Nowak", "Reid", "Bailey", "Ahmed", "Kelly", "Lewis", "Shah",
}

var homeNames = []string{
	"Riverside", "Oakfield", "Willow Court", "Beech House", "Meadowbank", "St Anne's", "Hillview", "Ashgrove",
}

var locations = []string{"Ward 1", "Ward 2", "Dementia Unit", "Ground Floor", "Nursing Wing"}

// slots are typical care-home shift patterns, overnight ones included.
var slots = [][2]string{
	{"07:00:00", "19:00:00"},
	{"08:00:00", "20:00:00"},
	{"08:00:00", "14:00:00"},
	{"14:00:00", "22:00:00"},
	{"19:00:00", "07:00:00"},
	{"20:00:00", "08:00:00"},
}

var digits = "0123456789"

func GenerateRandomName() (string, string) {
	return firstNames[rand.Intn(len(firstNames))], lastNames[rand.Intn(len(lastNames))]
}

func GenerateRandomRole() domain.StaffRole {
	return domain.StaffRoles[rand.Intn(len(domain.StaffRoles))]
}

// GenerateRandomPhone returns a UK mobile number in E.164 form.
func GenerateRandomPhone() string {
	var b strings.Builder
	b.WriteString("+447")
	for i := 0; i < 9; i++ {
		b.WriteByte(digits[rand.Intn(len(digits))])
	}
	return b.String()
}

func GenerateRandomStaff(agencyID int64, emailDomainName string) *domain.Staff {
	first, last := GenerateRandomName()

	return &domain.Staff{
		AgencyID:  agencyID,
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s.%s.%s@%s", strings.ToLower(first), strings.ToLower(last), GenerateRandomID(0, 4), emailDomainName),
		Phone:     GenerateRandomPhone(),
		Role:      GenerateRandomRole(),
		Status:    domain.StaffStatusActive,
	}
}

func GenerateRandomClient(agencyID int64, emailDomainName string) *domain.Client {
	name := homeNames[rand.Intn(len(homeNames))] + " Care Home"
	slug := strings.ToLower(strings.NewReplacer(" ", "", "'", "").Replace(name))

	return &domain.Client{
		AgencyID: agencyID,
		Name:     name,
		Email:    fmt.Sprintf("rota.%s%s@%s", slug, GenerateRandomID(0, 3), emailDomainName),
		Address:  fmt.Sprintf("%d High Street", rand.Intn(200)+1),
	}
}

// GenerateRandomShift returns an open shift for clientID within the next
// fortnight of from.
func GenerateRandomShift(agencyID, clientID int64, from time.Time) *domain.Shift {
	slot := slots[rand.Intn(len(slots))]
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, rand.Intn(14))
	duration, _ := domain.SpanHours(slot[0], slot[1])

	payRate := domain.Round2(11.5 + rand.Float64()*12)
	location := locations[rand.Intn(len(locations))]

	urgency := domain.UrgencyNormal
	if rand.Intn(5) == 0 {
		urgency = domain.UrgencyUrgent
	}

	return &domain.Shift{
		AgencyID:      agencyID,
		ClientID:      clientID,
		RoleRequired:  GenerateRandomRole(),
		Date:          day,
		StartTime:     slot[0],
		EndTime:       slot[1],
		DurationHours: duration,
		BreakMinutes:  int32(rand.Intn(3) * 30),
		PayRate:       payRate,
		ChargeRate:    domain.Round2(payRate * 1.5),
		Urgency:       urgency,
		WorkLocation:  &location,
	}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyz")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}
