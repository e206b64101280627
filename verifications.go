package verify

import (
	"context"
	"fmt"
)

// VerificationService layers actor attribution and audit emission over the
// verification store. Lookup operations pass straight through; every write
// stamps verified_by with the acting username and records an audit entry.
type VerificationService struct {
	repo         Verifications
	logger       Logger
	activitySink ActivitySink
}

// NewVerificationService wires the service over the given store.
func NewVerificationService(repo Verifications) *VerificationService {
	return &VerificationService{
		repo:         repo,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *VerificationService) WithLogger(logger Logger) *VerificationService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures the audit sink for verification writes.
func (s *VerificationService) WithActivitySink(sink ActivitySink) *VerificationService {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

func (s *VerificationService) Get(ctx context.Context, discordID string) (*Verification, error) {
	return s.repo.Get(ctx, discordID)
}

func (s *VerificationService) GetByCkey(ctx context.Context, ckey string) (*Verification, error) {
	return s.repo.GetByCkey(ctx, ckey)
}

func (s *VerificationService) List(ctx context.Context, page, limit int, search string) ([]Verification, error) {
	return s.repo.List(ctx, page, limit, search)
}

func (s *VerificationService) BulkGetByDiscordIDs(ctx context.Context, ids []string) ([]Verification, error) {
	return s.repo.BulkGetByDiscordIDs(ctx, ids)
}

func (s *VerificationService) BulkGetByCkeys(ctx context.Context, ckeys []string) ([]Verification, error) {
	return s.repo.BulkGetByCkeys(ctx, ckeys)
}

// Upsert creates or merge-updates the record for discordID and records a
// create_verification or update_verification audit entry accordingly.
func (s *VerificationService) Upsert(ctx context.Context, actor Identity, discordID, ckey string, flags Flags, method string) (*Verification, bool, error) {
	if discordID == "" || ckey == "" {
		return nil, false, NewValidationError("missing required fields: discord_id, ckey")
	}

	record, created, err := s.repo.Upsert(ctx, discordID, ckey, flags, method, actorUsername(actor))
	if err != nil {
		return nil, false, err
	}

	action := ActionUpdateVerification
	if created {
		action = ActionCreateVerification
	}
	s.emit(ctx, actor, action, fmt.Sprintf("Discord ID: %s, Ckey: %s", discordID, ckey))

	return record, created, nil
}

// Update overwrites the supplied fields on the record for discordID. Unlike
// Upsert, flags supplied here replace the stored flags.
func (s *VerificationService) Update(ctx context.Context, actor Identity, discordID string, patch VerificationPatch) error {
	patch.VerifiedBy = actorUsername(actor)
	if err := s.repo.Update(ctx, discordID, patch); err != nil {
		return err
	}

	s.emit(ctx, actor, ActionUpdateVerification, fmt.Sprintf("Discord ID: %s", discordID))
	return nil
}

// UpdateByCkey mirrors Update, addressing the record by ckey.
func (s *VerificationService) UpdateByCkey(ctx context.Context, actor Identity, ckey string, patch VerificationPatch) error {
	patch.VerifiedBy = actorUsername(actor)
	if err := s.repo.UpdateByCkey(ctx, ckey, patch); err != nil {
		return err
	}

	s.emit(ctx, actor, ActionUpdateVerification, fmt.Sprintf("Ckey: %s", ckey))
	return nil
}

func (s *VerificationService) Delete(ctx context.Context, actor Identity, discordID string) error {
	if err := s.repo.DeleteByDiscordID(ctx, discordID); err != nil {
		return err
	}

	s.emit(ctx, actor, ActionDeleteVerification, fmt.Sprintf("Discord ID: %s", discordID))
	return nil
}

func (s *VerificationService) DeleteByCkey(ctx context.Context, actor Identity, ckey string) error {
	if err := s.repo.DeleteByCkey(ctx, ckey); err != nil {
		return err
	}

	s.emit(ctx, actor, ActionDeleteVerification, fmt.Sprintf("Ckey: %s", ckey))
	return nil
}

func (s *VerificationService) emit(ctx context.Context, actor Identity, action, details string) {
	entry := NewActivityEntry(actor, action, details)
	if err := s.activitySink.Record(ctx, entry); err != nil {
		s.logger.Warn("activity sink record error", "action", action, "error", err)
	}
}

func actorUsername(actor Identity) string {
	if actor == nil {
		return ""
	}
	return actor.Username()
}
