package cast

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/Gida-concept/ai-radio-show-bot/internal/models"
)

// Host slots are static (ids 1 and 2, loaded from characters.json); guest
// slots are generated fresh for every show and always occupy ids 100 (male)
// and 101 (female) so voice resolution stays stable across cycles.
const (
	hostMaleID    = 1
	hostFemaleID  = 2
	guestMaleID   = 100
	guestFemaleID = 101

	guestMaleVoice   = "vits_male_02"
	guestFemaleVoice = "vits_female_02"
)

var maleNames = []string{
	"James", "John", "Robert", "Michael", "William", "David", "Richard", "Joseph", "Thomas", "Charles",
	"Christopher", "Daniel", "Matthew", "Anthony", "Donald", "Mark", "Paul", "Steven", "Andrew", "Kenneth",
	"Joshua", "Kevin", "Brian", "George", "Edward", "Ronald", "Timothy", "Jason", "Jeffrey", "Ryan",
	"Jacob", "Gary", "Nicholas", "Eric", "Jonathan", "Stephen", "Larry", "Justin", "Scott", "Brandon",
}

var femaleNames = []string{
	"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan", "Jessica", "Sarah", "Karen",
	"Nancy", "Lisa", "Margaret", "Betty", "Sandra", "Ashley", "Dorothy", "Kimberly", "Emily", "Donna",
	"Michelle", "Carol", "Amanda", "Melissa", "Deborah", "Stephanie", "Rebecca", "Laura", "Sharon", "Cynthia",
	"Samantha", "Katherine", "Christine", "Debra", "Rachel", "Catherine", "Carolyn", "Janet", "Ruth", "Maria",
}

var personas = []string{
	"A nervous accountant.", "A loud fitness trainer.", "A cynical barista.", "A hopelessly romantic librarian.",
	"A tech bro obsessed with crypto.", "A free-spirited artist.", "A strict school teacher.", "A tired nurse.",
	"A chaotic influencer.", "A shy gamer.", "A pretentious food critic.", "A laid-back surfer.",
	"A neurotic dog walker.", "A wealthy real estate agent.", "A struggling musician.",
}

// Participants is one show's cast: hosts drive the conversation, guests
// recount their date. The two sets are disjoint.
type Participants struct {
	Hosts  []models.Character
	Guests []models.Character
}

// Manager loads the static hosts and generates guests per show.
type Manager struct {
	hosts []models.Character
	byID  map[int]models.Character
	rng   *rand.Rand
}

// New loads the host characters from the JSON file at path. The file must
// contain the two static hosts (ids 1 and 2); other entries are ignored.
func New(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read characters file: %w", err)
	}

	var all []models.Character
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse characters file %s: %w", path, err)
	}

	var hosts []models.Character
	for _, c := range all {
		if c.ID == hostMaleID || c.ID == hostFemaleID {
			if err := models.ValidateCharacter(c); err != nil {
				return nil, fmt.Errorf("invalid host character: %w", err)
			}
			hosts = append(hosts, c)
		}
	}
	if len(hosts) < 2 {
		return nil, fmt.Errorf("characters file %s must contain host ids %d and %d", path, hostMaleID, hostFemaleID)
	}

	m := &Manager{
		hosts: hosts,
		byID:  make(map[int]models.Character, 4),
		rng:   rand.New(rand.NewSource(rand.Int63())),
	}
	for _, h := range hosts {
		m.byID[h.ID] = h
	}

	log.Printf("[Cast] Loaded %d static hosts from %s", len(hosts), path)
	return m, nil
}

// SelectParticipants returns the static hosts and two freshly generated
// guests, and registers the guests so ByID resolves them during audio
// generation. Guest slots reuse ids 100/101 on every cycle.
func (m *Manager) SelectParticipants() (*Participants, error) {
	hostMale, ok := m.byID[hostMaleID]
	if !ok {
		return nil, fmt.Errorf("male host (id %d) not loaded", hostMaleID)
	}
	hostFemale, ok := m.byID[hostFemaleID]
	if !ok {
		return nil, fmt.Errorf("female host (id %d) not loaded", hostFemaleID)
	}

	guestMaleName := m.pick(maleNames)
	for guestMaleName == hostMale.Name {
		guestMaleName = m.pick(maleNames)
	}
	guestFemaleName := m.pick(femaleNames)
	for guestFemaleName == hostFemale.Name {
		guestFemaleName = m.pick(femaleNames)
	}

	guestMale := models.Character{
		ID:      guestMaleID,
		Name:    guestMaleName,
		Gender:  models.GenderMale,
		Voice:   guestMaleVoice,
		Persona: m.pick(personas),
	}
	guestFemale := models.Character{
		ID:      guestFemaleID,
		Name:    guestFemaleName,
		Gender:  models.GenderFemale,
		Voice:   guestFemaleVoice,
		Persona: m.pick(personas),
	}

	m.byID[guestMaleID] = guestMale
	m.byID[guestFemaleID] = guestFemale

	log.Printf("[Cast] Show cast: hosts=%s&%s guests=%s&%s",
		hostMale.Name, hostFemale.Name, guestMale.Name, guestFemale.Name)

	return &Participants{
		Hosts:  []models.Character{hostMale, hostFemale},
		Guests: []models.Character{guestMale, guestFemale},
	}, nil
}

// ByID resolves a character by id, covering both static hosts and the guests
// registered by the most recent SelectParticipants call.
func (m *Manager) ByID(id int) (models.Character, error) {
	c, ok := m.byID[id]
	if !ok {
		return models.Character{}, fmt.Errorf("no character with id %d", id)
	}
	return c, nil
}

// All returns every currently registered character (hosts + current guests).
func (m *Manager) All() []models.Character {
	out := make([]models.Character, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, c)
	}
	return out
}

func (m *Manager) pick(list []string) string {
	return list[m.rng.Intn(len(list))]
}
