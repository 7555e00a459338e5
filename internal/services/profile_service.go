package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"huskytrack/advisor/internal/models"
	"huskytrack/advisor/internal/repositories"
)

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// Put replaces the whole profile blob (last writer wins).
	Put(ctx context.Context, userID string, profile models.UserProfile) (*models.UserProfile, error)
	// SignIn creates the profile on first sign-in and refreshes name/email after.
	SignIn(ctx context.Context, userID, name, email string) (*models.UserProfile, error)
	RecordUpload(ctx context.Context, userID string, doc models.UploadedDocument) (*models.UserProfile, error)
	StartChat(ctx context.Context, userID string) (*models.ChatSession, error)
	AppendMessage(ctx context.Context, userID string, chatID int, text, sender string) (*models.ChatSession, models.Message, error)
}

type profileService struct {
	repo   repositories.ProfileRepository
	writer ProfileWriter
	policy SignUpPolicy
	now    func() time.Time
	log    *zap.Logger
}

func NewProfileService(repo repositories.ProfileRepository, writer ProfileWriter, policy SignUpPolicy, log *zap.Logger) ProfileService {
	return &profileService{
		repo:   repo,
		writer: writer,
		policy: policy,
		now:    time.Now,
		log:    log,
	}
}

func (s *profileService) Get(_ context.Context, userID string) (*models.UserProfile, error) {
	record, err := s.repo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	profile := record.Profile.Data()
	return &profile, nil
}

func (s *profileService) Put(ctx context.Context, userID string, profile models.UserProfile) (*models.UserProfile, error) {
	var out models.UserProfile
	err := s.writer.Do(ctx, userID, func(context.Context) error {
		record, err := s.repo.Replace(userID, profile)
		if err != nil {
			return err
		}
		out = record.Profile.Data()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *profileService) SignIn(ctx context.Context, userID, name, email string) (*models.UserProfile, error) {
	var out models.UserProfile
	err := s.writer.Do(ctx, userID, func(context.Context) error {
		record, err := s.repo.FindByUserID(userID)
		if errors.Is(err, repositories.ErrProfileNotFound) {
			if err := s.policy.Allow(email); err != nil {
				return err
			}

			profile := ApplyIdentity(emptyProfile(), name, email)
			if _, err := s.repo.Create(userID, profile); err != nil {
				return err
			}
			s.log.Info("👤 Profile created at first sign-in", zap.String("user_id", userID))
			out = profile
			return nil
		}
		if err != nil {
			return err
		}

		profile := ApplyIdentity(record.Profile.Data(), name, email)
		if _, err := s.repo.Update(userID, profile, record.Version); err != nil {
			return err
		}
		out = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *profileService) RecordUpload(ctx context.Context, userID string, doc models.UploadedDocument) (*models.UserProfile, error) {
	var out models.UserProfile
	err := s.mutate(ctx, userID, func(p models.UserProfile) (models.UserProfile, error) {
		out = MergeDocument(p, doc)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("📎 Document merged into profile",
		zap.String("user_id", userID),
		zap.String("document", doc.Name),
		zap.String("type", string(doc.Type)),
	)
	return &out, nil
}

func (s *profileService) StartChat(ctx context.Context, userID string) (*models.ChatSession, error) {
	var chat models.ChatSession
	err := s.mutate(ctx, userID, func(p models.UserProfile) (models.UserProfile, error) {
		var next models.UserProfile
		next, chat = StartChat(p, s.now())
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *profileService) AppendMessage(ctx context.Context, userID string, chatID int, text, sender string) (*models.ChatSession, models.Message, error) {
	var (
		chat models.ChatSession
		msg  models.Message
	)
	err := s.mutate(ctx, userID, func(p models.UserProfile) (models.UserProfile, error) {
		if sender == "" {
			sender = SenderName(p)
		}

		next, appended, err := AppendMessage(p, chatID, NewMessage(text, sender, s.now()))
		if err != nil {
			return p, err
		}
		msg = appended
		chat = next.Chats[next.FindChat(chatID)]
		return next, nil
	})
	if err != nil {
		return nil, models.Message{}, err
	}
	return &chat, msg, nil
}

// mutate runs a read-modify-write of userID's profile on the user's writer shard.
func (s *profileService) mutate(ctx context.Context, userID string, fn func(models.UserProfile) (models.UserProfile, error)) error {
	return s.writer.Do(ctx, userID, func(context.Context) error {
		record, err := s.repo.FindByUserID(userID)
		if err != nil {
			return err
		}

		next, err := fn(record.Profile.Data())
		if err != nil {
			return err
		}

		if _, err := s.repo.Update(userID, next, record.Version); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		return nil
	})
}

func emptyProfile() models.UserProfile {
	return models.UserProfile{
		CurrentCourses:   []string{},
		CompletedCourses: []string{},
		Documents:        []models.UploadedDocument{},
		Chats:            []models.ChatSession{},
	}
}
