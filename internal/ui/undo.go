package ui

import (
	"fmt"

	"nimbus/internal/db"
	"nimbus/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type undoAction struct {
	label string
	undo  func() error
	redo  func() error
}

type undoAppliedMsg struct {
	err       error
	action    undoAction
	direction string // undo, redo
}

func (m *Model) pushUndoAction(action undoAction) {
	m.undoStack = append(m.undoStack, action)
	m.redoStack = nil
}

func (m *Model) undoCmd() tea.Cmd {
	if len(m.undoStack) == 0 {
		return nil
	}
	action := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	return func() tea.Msg {
		err := action.undo()
		return undoAppliedMsg{err: err, action: action, direction: "undo"}
	}
}

func (m *Model) redoCmd() tea.Cmd {
	if len(m.redoStack) == 0 {
		return nil
	}
	action := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	return func() tea.Msg {
		err := action.redo()
		return undoAppliedMsg{err: err, action: action, direction: "redo"}
	}
}

func (m *Model) buildPlaceSaveAction(msg model.PlaceSavedMsg) undoAction {
	after := msg.After
	database := m.db
	return undoAction{
		label: fmt.Sprintf("saved %s", after.Name),
		undo: func() error {
			return db.DeletePlace(database, after.ID)
		},
		redo: func() error {
			return db.InsertPlaceWithID(database, after)
		},
	}
}

func (m *Model) buildDeletePlaceAction(msg model.DeletePlaceMsg) undoAction {
	deleted := msg.Deleted
	database := m.db
	return undoAction{
		label: fmt.Sprintf("deleted %s", deleted.Name),
		undo: func() error {
			return db.InsertPlaceWithID(database, deleted)
		},
		redo: func() error {
			return db.DeletePlace(database, deleted.ID)
		},
	}
}

func (m *Model) applyUndoResult(msg undoAppliedMsg) tea.Cmd {
	if msg.err != nil {
		m.error = fmt.Sprintf("%s failed: %v", msg.direction, msg.err)
		return nil
	}

	if msg.direction == "undo" {
		m.redoStack = append(m.redoStack, msg.action)
		m.info = "Undid: " + msg.action.label
	} else {
		m.undoStack = append(m.undoStack, msg.action)
		m.info = "Redid: " + msg.action.label
	}
	m.error = ""
	return loadPlacesCmd(m.db)
}
