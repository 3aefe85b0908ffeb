package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aaronzipp/wolfden/internal/models"
)

// NewSessionID creates a random session identifier
func NewSessionID() string {
	return uuid.NewString()
}

// Assignment maps each seated player to a role and names the gun holder
type Assignment struct {
	Roles     map[string]models.Role
	GunHolder string
}

// Assigner deals roles to a roster
type Assigner interface {
	Assign(variant models.Variant, players []models.Identity) (Assignment, error)
}

// Deal returns the role mix for a roster of n players
func Deal(n int) []models.Role {
	wolves := max(1, n/WolfRatio)
	roles := make([]models.Role, 0, n)
	for range wolves {
		roles = append(roles, models.RoleWolf)
	}
	if n-len(roles) > 1 {
		roles = append(roles, models.RoleSeer)
	}
	if n >= GuardianMinPlayers {
		roles = append(roles, models.RoleGuardian)
	}
	for len(roles) < n {
		roles = append(roles, models.RoleVillager)
	}
	return roles
}

// RandomAssigner shuffles Deal's role mix over the roster
type RandomAssigner struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAssigner creates an assigner seeded from crypto/rand
func NewRandomAssigner() *RandomAssigner {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// fallback to the clock if crypto fails
		now := uint64(time.Now().UnixNano())
		binary.LittleEndian.PutUint64(seed[:8], now)
		binary.LittleEndian.PutUint64(seed[8:], now>>1)
	}
	return NewSeededAssigner(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]))
}

// NewSeededAssigner creates a deterministic assigner
func NewSeededAssigner(seed1, seed2 uint64) *RandomAssigner {
	return &RandomAssigner{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Assign implements Assigner
func (a *RandomAssigner) Assign(variant models.Variant, players []models.Identity) (Assignment, error) {
	if len(players) < variant.MinPlayers {
		return Assignment{}, fmt.Errorf("assign: %d players, need %d", len(players), variant.MinPlayers)
	}
	roles := Deal(len(players))

	a.mu.Lock()
	a.rng.Shuffle(len(roles), func(i, j int) { roles[i], roles[j] = roles[j], roles[i] })
	var villagers []string
	out := Assignment{Roles: make(map[string]models.Role, len(players))}
	for i, p := range players {
		out.Roles[p.ID] = roles[i]
		if roles[i] == models.RoleVillager {
			villagers = append(villagers, p.ID)
		}
	}
	if variant.Gun && len(villagers) > 0 {
		out.GunHolder = villagers[a.rng.IntN(len(villagers))]
	}
	a.mu.Unlock()

	return out, nil
}

// FixedAssigner hands out a predetermined assignment
type FixedAssigner Assignment

// Assign implements Assigner
func (f FixedAssigner) Assign(_ models.Variant, players []models.Identity) (Assignment, error) {
	for _, p := range players {
		if _, ok := f.Roles[p.ID]; !ok {
			return Assignment{}, fmt.Errorf("assign: no role for player %s", p.ID)
		}
	}
	return Assignment(f), nil
}
