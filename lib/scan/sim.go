// Copyright 2026 The Trafilytics Authors
// SPDX-License-Identifier: Apache-2.0

package scan

import (
	"encoding/binary"
	"fmt"
	"math/rand"
)

// SimSource is a seeded, deterministic observation generator for the
// sensor's --simulate mode and for tests. It models a fixed
// population of nearby beacons plus transient passers-by: residents
// appear in most polls (devices that stay in range across cycles),
// transients appear once and move on.
type SimSource struct {
	rng       *rand.Rand
	residents []Observation
	nextID    uint32
}

// NewSimSource creates a simulator with the given seed and resident
// beacon count. The same seed always produces the same observation
// sequence.
func NewSimSource(seed int64, residents int) *SimSource {
	s := &SimSource{rng: rand.New(rand.NewSource(seed))}
	for i := 0; i < residents; i++ {
		s.residents = append(s.residents, Observation{
			Identifier:     s.newIdentifier(),
			SignalStrength: -40 - s.rng.Intn(30),
			Label:          fmt.Sprintf("resident-%02d", i),
		})
	}
	return s
}

// Scan returns each resident with independent 80% probability plus
// zero to three transient one-off beacons.
func (s *SimSource) Scan() ([]Observation, error) {
	var batch []Observation
	for _, resident := range s.residents {
		if s.rng.Intn(10) < 8 {
			observation := resident
			observation.SignalStrength -= s.rng.Intn(6) // slight fade per poll
			batch = append(batch, observation)
		}
	}
	for i := s.rng.Intn(4); i > 0; i-- {
		batch = append(batch, Observation{
			Identifier:     s.newIdentifier(),
			SignalStrength: -70 - s.rng.Intn(20),
			Label:          "",
		})
	}
	return batch, nil
}

// newIdentifier fabricates a locally-administered unicast identifier
// so simulated addresses can never collide with real hardware.
func (s *SimSource) newIdentifier() [6]byte {
	s.nextID++
	var id [6]byte
	id[0] = 0x02 // locally administered, unicast
	id[1] = 0x51
	binary.BigEndian.PutUint32(id[2:], s.nextID)
	return id
}

// FailingSource always returns ErrScanFailed. Tests use it to drive
// the engine's scan-error path.
type FailingSource struct{}

// Scan implements Source.
func (FailingSource) Scan() ([]Observation, error) {
	return nil, ErrScanFailed
}

// StaticSource returns a fixed batch on every poll. Tests use it for
// deterministic classification scenarios.
type StaticSource struct {
	Batch []Observation
}

// Scan implements Source.
func (s *StaticSource) Scan() ([]Observation, error) {
	return s.Batch, nil
}
