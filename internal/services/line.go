package services

import (
	"context"
	"fmt"
	"math"

	"mysteries-backend/internal/models"
)

// The waiting line is a singly linked list stored as line:<id> -> next id,
// with 0 terminating it. Turns come from a global counter and are never
// reused.

func inLine(tx Tx, userID uint32) (bool, error) {
	if _, linked, err := tx.Get(fmt.Sprintf(KeyLineLink, userID)); err != nil || linked {
		return linked, err
	}
	last, err := getU32Or(tx, KeyLastInLine, 0)
	if err != nil {
		return false, err
	}
	if last == userID {
		return true, nil
	}
	_, hasTurn, err := getU32(tx, fmt.Sprintf(KeyLineTurn, userID))
	return hasTurn, err
}

// Enqueue appends userID to the line and returns its turn.
func (g *GameState) Enqueue(ctx context.Context, call Call, userID uint32) (uint32, error) {
	if err := g.requireAuthority(call); err != nil {
		return 0, err
	}

	var turn uint32
	err := g.transition(ctx, "enqueue", call, func(tx Tx, em *emitter) error {
		if err := requireAllocated(tx, userID); err != nil {
			return err
		}
		queued, err := inLine(tx, userID)
		if err != nil {
			return err
		}
		if queued {
			return fmt.Errorf("%w: user %d is already in line", ErrAlreadyQueued, userID)
		}

		length, err := getU32Or(tx, KeyLineLength, 0)
		if err != nil {
			return err
		}
		capacity, err := getU32Or(tx, KeyMaxLineCapacity, 0)
		if err != nil {
			return err
		}
		if length >= capacity {
			return fmt.Errorf("%w: line holds at most %d users", ErrCapacityExceeded, capacity)
		}

		lastTurn, err := getU32Or(tx, KeyLastTurn, 0)
		if err != nil {
			return err
		}
		if lastTurn == math.MaxUint32 {
			return fmt.Errorf("%w: turn counter exhausted", ErrOverflow)
		}

		if length == 0 {
			setU32(tx, KeyFirstInLine, userID)
		} else {
			last, err := getU32Or(tx, KeyLastInLine, 0)
			if err != nil {
				return err
			}
			setU32(tx, fmt.Sprintf(KeyLineLink, last), userID)
		}
		setU32(tx, KeyLastInLine, userID)
		setU32(tx, fmt.Sprintf(KeyLineTurn, userID), lastTurn)
		setU32(tx, KeyLastTurn, lastTurn+1)
		setU32(tx, KeyLineLength, length+1)

		turn = lastTurn
		em.emit(models.EventLineEnqueued, map[string]string{
			"user_id": models.FormatUint32(userID),
			"turn":    models.FormatUint32(lastTurn),
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return turn, nil
}

// Dequeue pops the head of the line. It reports false, without error, when
// the line is empty.
func (g *GameState) Dequeue(ctx context.Context, call Call) (uint32, bool, error) {
	if err := g.requireAuthority(call); err != nil {
		return 0, false, err
	}

	var popped uint32
	err := g.transition(ctx, "dequeue", call, func(tx Tx, em *emitter) error {
		popped = 0
		first, err := getU32Or(tx, KeyFirstInLine, 0)
		if err != nil || first == 0 {
			return err
		}

		next, err := getU32Or(tx, fmt.Sprintf(KeyLineLink, first), 0)
		if err != nil {
			return err
		}
		length, err := getU32Or(tx, KeyLineLength, 0)
		if err != nil {
			return err
		}
		if length == 0 {
			return fmt.Errorf("%w: head %d set on an empty line", ErrLineCorrupted, first)
		}

		setU32(tx, KeyFirstInLine, next)
		if next == 0 {
			setU32(tx, KeyLastInLine, 0)
		}
		setU32(tx, KeyLineLength, length-1)
		tx.Del(fmt.Sprintf(KeyLineLink, first))
		tx.Del(fmt.Sprintf(KeyLineTurn, first))

		popped = first
		em.emit(models.EventLineDequeued, map[string]string{
			"user_id": models.FormatUint32(first),
		})
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return popped, popped != 0, nil
}

func headTurn(tx Tx) (uint32, error) {
	first, err := getU32Or(tx, KeyFirstInLine, 0)
	if err != nil {
		return 0, err
	}
	if first == 0 {
		return getU32Or(tx, KeyLastTurn, 0)
	}
	return getU32Or(tx, fmt.Sprintf(KeyLineTurn, first), 0)
}

// LinePosition reports how many turns userID is behind the head of the
// line. queued is false when userID holds no turn.
func (g *GameState) LinePosition(ctx context.Context, userID uint32) (turns uint32, queued bool, err error) {
	err = g.view(ctx, func(tx Tx) error {
		head, err := headTurn(tx)
		if err != nil {
			return err
		}
		turn, found, err := getU32(tx, fmt.Sprintf(KeyLineTurn, userID))
		if err != nil {
			return err
		}
		if !found {
			turn = math.MaxUint32
		}
		turns = turn - head
		queued = found
		return nil
	})
	return turns, queued, err
}

// TurnsToPlay is turn(userID) - turn(head). For a user that is not in line
// the result is MaxUint32 - turn(head), which callers must not read as a
// position.
func (g *GameState) TurnsToPlay(ctx context.Context, userID uint32) (uint32, error) {
	turns, _, err := g.LinePosition(ctx, userID)
	return turns, err
}

// SnapshotLine walks the line from its head. A walk longer than the recorded
// length, one that revisits an id, or one that ends early is reported as
// ErrLineCorrupted.
func (g *GameState) SnapshotLine(ctx context.Context) ([]uint32, error) {
	var line []uint32
	err := g.view(ctx, func(tx Tx) error {
		length, err := getU32Or(tx, KeyLineLength, 0)
		if err != nil {
			return err
		}
		current, err := getU32Or(tx, KeyFirstInLine, 0)
		if err != nil {
			return err
		}

		line = make([]uint32, 0, length)
		seen := make(map[uint32]struct{}, length)
		for current != 0 {
			if uint32(len(line)) >= length {
				return fmt.Errorf("%w: walk exceeds length %d", ErrLineCorrupted, length)
			}
			if _, dup := seen[current]; dup {
				return fmt.Errorf("%w: user %d reached twice", ErrLineCorrupted, current)
			}
			seen[current] = struct{}{}
			line = append(line, current)

			current, err = getU32Or(tx, fmt.Sprintf(KeyLineLink, current), 0)
			if err != nil {
				return err
			}
		}
		if uint32(len(line)) != length {
			return fmt.Errorf("%w: walked %d of %d users", ErrLineCorrupted, len(line), length)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (g *GameState) LineStatus(ctx context.Context) (*models.LineStatus, error) {
	status := &models.LineStatus{}
	err := g.view(ctx, func(tx Tx) error {
		var err error
		if status.FirstInLine, err = getU32Or(tx, KeyFirstInLine, 0); err != nil {
			return err
		}
		if status.LastInLine, err = getU32Or(tx, KeyLastInLine, 0); err != nil {
			return err
		}
		if status.Length, err = getU32Or(tx, KeyLineLength, 0); err != nil {
			return err
		}
		if status.LastTurn, err = getU32Or(tx, KeyLastTurn, 0); err != nil {
			return err
		}
		status.Capacity, err = getU32Or(tx, KeyMaxLineCapacity, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}
