package service

import (
	"fmt"

	"tg-groupguard/internal/models"
	"tg-groupguard/internal/registry"
)

// AccessService manages the per-chat access lists: approvals (moderation
// exemption), promotions (bot-level admin), and disabled commands.
type AccessService struct {
	settings *SettingsService
	commands *registry.Registry
}

func NewAccessService(settings *SettingsService, commands *registry.Registry) *AccessService {
	return &AccessService{
		settings: settings,
		commands: commands,
	}
}

// Approve exempts a user from automated moderation in the chat.
func (s *AccessService) Approve(chatID, userID int64) error {
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.ApprovedUsers = models.AddID(cs.ApprovedUsers, userID)
	})
}

// Unapprove removes a user's moderation exemption.
func (s *AccessService) Unapprove(chatID, userID int64) error {
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.ApprovedUsers = models.RemoveID(cs.ApprovedUsers, userID)
	})
}

// UnapproveAll clears the approval list. Callers put this behind a
// confirmation flow.
func (s *AccessService) UnapproveAll(chatID int64) error {
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.ApprovedUsers = nil
	})
}

// Approved returns the chat's approved user IDs.
func (s *AccessService) Approved(chatID int64) []int64 {
	settings := s.settings.Settings(chatID)
	ids := make([]int64, len(settings.ApprovedUsers))
	copy(ids, settings.ApprovedUsers)
	return ids
}

// Promote grants a user bot-level admin rights in the chat.
func (s *AccessService) Promote(chatID, userID int64) error {
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.PromotedUsers = models.AddID(cs.PromotedUsers, userID)
	})
}

// Demote revokes a user's bot-level admin rights.
func (s *AccessService) Demote(chatID, userID int64) error {
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		cs.PromotedUsers = models.RemoveID(cs.PromotedUsers, userID)
	})
}

// Promoted returns the chat's promoted user IDs.
func (s *AccessService) Promoted(chatID int64) []int64 {
	settings := s.settings.Settings(chatID)
	ids := make([]int64, len(settings.PromotedUsers))
	copy(ids, settings.PromotedUsers)
	return ids
}

// DisableCommand turns a command off for the chat. Owner commands and
// the disabling controls themselves cannot be disabled.
func (s *AccessService) DisableCommand(chatID int64, command string) error {
	if !s.commands.Disableable(command) {
		return fmt.Errorf("command %q cannot be disabled", command)
	}
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		for _, c := range cs.DisabledCommands {
			if c == command {
				return
			}
		}
		cs.DisabledCommands = append(cs.DisabledCommands, command)
	})
}

// EnableCommand turns a disabled command back on.
func (s *AccessService) EnableCommand(chatID int64, command string) error {
	return s.settings.Update(chatID, func(cs *models.ChatSettings) {
		for i, c := range cs.DisabledCommands {
			if c == command {
				cs.DisabledCommands = append(cs.DisabledCommands[:i], cs.DisabledCommands[i+1:]...)
				return
			}
		}
	})
}

// Disabled returns the chat's disabled command names.
func (s *AccessService) Disabled(chatID int64) []string {
	settings := s.settings.Settings(chatID)
	names := make([]string, len(settings.DisabledCommands))
	copy(names, settings.DisabledCommands)
	return names
}
