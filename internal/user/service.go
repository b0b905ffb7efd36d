package user

import (
	"errors"

	"roomhub/internal/presence"
)

// NicknameChecker is the part of the registry availability checks need.
type NicknameChecker interface {
	IsNicknameTaken(name string) bool
}

type Service struct {
	names NicknameChecker
}

func NewService(names NicknameChecker) *Service {
	return &Service{names: names}
}

// CheckNickname reports whether name could be claimed right now. It is only
// advisory: the name can still be taken before the client joins.
func (s *Service) CheckNickname(name string) error {
	if err := presence.ValidateNickname(name); err != nil {
		return err
	}
	if s.names.IsNicknameTaken(name) {
		return presence.ErrNameTaken
	}
	return nil
}

func (s *Service) Validate(req *ValidateRequest) *ValidateResponse {
	err := s.CheckNickname(req.Nickname)
	switch {
	case err == nil:
		return &ValidateResponse{Valid: true}
	case errors.Is(err, presence.ErrInvalidName):
		return &ValidateResponse{Message: "Nickname cannot be empty"}
	case errors.Is(err, presence.ErrNameTaken):
		return &ValidateResponse{Message: "Nickname is already in use"}
	}
	return &ValidateResponse{Message: err.Error()}
}
