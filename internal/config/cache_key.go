package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserProgressKey returns the key holding a user's local progress document.
// An empty userID maps to the single-device "local" document.
func (r *CacheKeyStruct) UserProgressKey(userID string) string {
	if userID == "" {
		return "progress:local"
	}
	return fmt.Sprintf("progress:%s", userID)
}

// RevokedTokenKey returns the key marking a JWT ID as logged out
func (r *CacheKeyStruct) RevokedTokenKey(jti string) string {
	return fmt.Sprintf("auth:revoked:%s", jti)
}

// SimulationSessionKey returns the key of a running simulation's paper and timing
func (r *CacheKeyStruct) SimulationSessionKey(simulationID string) string {
	return fmt.Sprintf("simulation:%s:session", simulationID)
}

// SimulationAnswersKey returns the hash key holding question index -> chosen option
func (r *CacheKeyStruct) SimulationAnswersKey(simulationID string) string {
	return fmt.Sprintf("simulation:%s:answers", simulationID)
}

// SimulationSubmittedKey returns the SETNX guard that makes submission happen once
func (r *CacheKeyStruct) SimulationSubmittedKey(simulationID string) string {
	return fmt.Sprintf("simulation:%s:submitted", simulationID)
}

// SimulationResultKey returns the key caching the graded result of a simulation
func (r *CacheKeyStruct) SimulationResultKey(simulationID string) string {
	return fmt.Sprintf("simulation:%s:result", simulationID)
}

// UserActiveSimulationKey returns the key pointing at a user's running simulation
func (r *CacheKeyStruct) UserActiveSimulationKey(userID string) string {
	return fmt.Sprintf("user:%s:active_simulation", userID)
}

// SimulationEventsChannel returns the Redis PubSub channel for simulation events
func (r *CacheKeyStruct) SimulationEventsChannel(simulationID string) string {
	return fmt.Sprintf("simulation:%s:events", simulationID)
}

var CacheKey = NewCacheKeyStruct()
