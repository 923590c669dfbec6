package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mediconnect/internal/apperr"
	"mediconnect/internal/auth"
	"mediconnect/internal/model"
)

const DefaultSpeciality = "General Medicine"

type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	Role       model.Role
	Speciality string
	Phone      string
}

type Session struct {
	Profile *model.Profile
	Token   string
}

type Issuer interface {
	Issue(id auth.Identity) (string, error)
}

type AuthService struct {
	users  UserStore
	tokens Issuer
	log    *zap.Logger
}

func NewAuthService(users UserStore, tokens Issuer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log}
}

// dummyHash keeps login timing similar whether or not the email exists.
var dummyHash, _ = auth.HashPassword("mediconnect-timing-equaliser")

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if in.Role != model.RoleDoctor && in.Role != model.RolePatient {
		return nil, apperr.Invalid("Role must be DOCTOR or PATIENT")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.UserByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User already exists")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
	}
	p := &model.Profile{}
	switch in.Role {
	case model.RoleDoctor:
		spec := strings.TrimSpace(in.Speciality)
		if spec == "" {
			spec = DefaultSpeciality
		}
		p.Doctor = &model.Doctor{ID: uuid.New().String(), UserID: u.ID, Speciality: spec, Name: u.Name, Email: u.Email}
	case model.RolePatient:
		p.Patient = &model.Patient{ID: uuid.New().String(), UserID: u.ID, Name: u.Name, Email: u.Email}
		if phone := strings.TrimSpace(in.Phone); phone != "" {
			p.Patient.Phone = &phone
		}
	}

	if err := s.users.CreateUser(ctx, u, p.Doctor, p.Patient); err != nil {
		return nil, err
	}
	p.User = *u
	if p.Doctor != nil {
		p.Doctor.CreatedAt = u.CreatedAt
	}

	tok, err := s.tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return &Session{Profile: p, Token: tok}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			auth.CheckPassword(dummyHash, password)
			return nil, apperr.InvalidCredentials()
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.InvalidCredentials()
	}

	p, err := s.users.Profile(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	tok, err := s.tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{Profile: p, Token: tok}, nil
}
