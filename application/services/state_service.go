package services

import (
	"concepter-backend/domain/states"
	appErrors "concepter-backend/pkg/errors"
)

// State operations on GraphService. These forward to the snapshot
// manager under the service lock; a state switch must never observe a
// half-updated edge list.

// SwitchState saves the node's current configuration and makes the
// named one current
func (s *GraphService) SwitchState(nodeID, stateName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(nodeID)
	if err != nil {
		return err
	}
	s.states.SwitchState(n, stateName)
	return nil
}

// ListStates returns the node's snapshot names, materializing the base
// snapshot on first use
func (s *GraphService) ListStates(nodeID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(nodeID)
	if err != nil {
		return nil, err
	}
	return s.states.ListStates(n), nil
}

// RemoveState drops a stored snapshot
func (s *GraphService) RemoveState(nodeID, stateName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(nodeID)
	if err != nil {
		return err
	}
	s.states.RemoveState(n, stateName)
	return nil
}

// RenameState rekeys a stored snapshot
func (s *GraphService) RenameState(nodeID, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(nodeID)
	if err != nil {
		return err
	}
	if !s.states.RenameState(n, oldName, newName) {
		return appErrors.NewNotFoundError("state " + oldName)
	}
	return nil
}

// ClearStates wipes every snapshot on the node and resets it to base
func (s *GraphService) ClearStates(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(nodeID)
	if err != nil {
		return err
	}
	s.states.ClearStates(n)
	return nil
}

// CompareStates diffs two stored snapshots of a node
func (s *GraphService) CompareStates(nodeID, sourceName, targetName string) (states.ChildDiff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(nodeID)
	if err != nil {
		return nil, err
	}
	diff, ok := s.states.CompareTwoStates(n, sourceName, targetName)
	if !ok {
		return nil, appErrors.NewNotFoundError("state " + sourceName + " or " + targetName)
	}
	return diff, nil
}

// CompareWithState diffs a node's live edges against a stored snapshot
func (s *GraphService) CompareWithState(nodeID, stateName string) (states.ChildDiff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getNode(nodeID)
	if err != nil {
		return nil, err
	}
	diff, ok := s.states.CompareWithState(n, stateName)
	if !ok {
		return nil, appErrors.NewNotFoundError("state " + stateName)
	}
	return diff, nil
}

// ApplyDiff replays a graph diff across every registered node
func (s *GraphService) ApplyDiff(diff states.GraphDiff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	states.ApplyAll(s.store, s.store.All(), diff)
}

// RevertDiff undoes a graph diff across every registered node
func (s *GraphService) RevertDiff(diff states.GraphDiff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	states.RevertAll(s.store, s.store.All(), diff)
}

// ScoreChanges ranks registered roots by how much of the diff lands in
// their subtrees
func (s *GraphService) ScoreChanges(diff states.GraphDiff) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return states.PropagatedScores(s.store, diff)
}
