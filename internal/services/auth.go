package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/velora-app/velora-backend/internal/data/repos"
	types "github.com/velora-app/velora-backend/internal/domain"
	"github.com/velora-app/velora-backend/internal/platform/apierr"
	"github.com/velora-app/velora-backend/internal/platform/ctxutil"
	"github.com/velora-app/velora-backend/internal/platform/dbctx"
	"github.com/velora-app/velora-backend/internal/platform/logger"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Locale      string `json:"locale"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.Profile, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context) (*TokenPair, error)
	Logout(ctx context.Context) error
	// SetContextFromToken validates the JWT and loads the token row so the
	// request carries account and profile ids downstream.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	accountRepo   repos.AccountRepo
	tokenRepo     repos.AccountTokenRepo
	profileRepo   repos.ProfileRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	accountRepo repos.AccountRepo,
	tokenRepo repos.AccountTokenRepo,
	profileRepo repos.ProfileRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		accountRepo:   accountRepo,
		tokenRepo:     tokenRepo,
		profileRepo:   profileRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	displayName := strings.TrimSpace(in.DisplayName)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apierr.BadRequest("invalid_email", fmt.Errorf("invalid email"))
	}
	if len(in.Password) < 8 {
		return nil, apierr.BadRequest("weak_password", fmt.Errorf("password must be at least 8 characters"))
	}
	if displayName == "" {
		return nil, apierr.BadRequest("missing_display_name", fmt.Errorf("display name is required"))
	}
	locale := strings.TrimSpace(in.Locale)
	if locale == "" {
		locale = "en"
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Internal("password_hash_failed", err)
	}

	var profile *types.Profile
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.accountRepo.EmailExists(dbc, email)
		if err != nil {
			return apierr.Internal("account_lookup_failed", err)
		}
		if exists {
			return apierr.PolicyViolation("email_taken", fmt.Errorf("email already registered"))
		}

		account := &types.Account{
			ID:       uuid.New(),
			Email:    email,
			Password: string(hashed),
			Locale:   locale,
		}
		if _, err := as.accountRepo.Create(dbc, []*types.Account{account}); err != nil {
			return apierr.Internal("account_write_failed", err)
		}

		profile = &types.Profile{
			ID:          uuid.New(),
			AccountID:   account.ID,
			DisplayName: displayName,
		}
		if as.avatarService != nil {
			if err := as.avatarService.CreateAndStoreAvatar(ctx, tx, profile); err != nil {
				return apierr.Internal("avatar_create_failed", err)
			}
		}
		if _, err := as.profileRepo.Create(dbc, []*types.Profile{profile}); err != nil {
			return apierr.Internal("profile_write_failed", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return profile, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	dbc := dbctx.Context{Ctx: ctx}
	account, err := as.accountRepo.GetByEmail(dbc, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Unauthorized("invalid_credentials", fmt.Errorf("invalid email or password"))
		}
		return nil, apierr.Internal("account_lookup_failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, apierr.Unauthorized("invalid_credentials", fmt.Errorf("invalid email or password"))
	}

	var pair *TokenPair
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		profile, err := as.profileRepo.GetByAccountID(inner, account.ID)
		if err != nil {
			return apierr.Internal("profile_lookup_failed", err)
		}
		p, err := as.issueTokens(inner, account, profile)
		if err != nil {
			return err
		}
		pair = p
		return nil
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) Refresh(ctx context.Context) (*TokenPair, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return nil, apierr.Unauthorized("missing_refresh_token", fmt.Errorf("refresh token not set in request data"))
	}

	var pair *TokenPair
	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := as.tokenRepo.GetByRefreshToken(inner, rd.RefreshToken)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.Unauthorized("invalid_refresh_token", fmt.Errorf("unknown refresh token"))
			}
			return apierr.Internal("token_lookup_failed", err)
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if err := as.tokenRepo.DeleteByAccessToken(inner, existing.AccessToken); err != nil {
				return apierr.Internal("token_delete_failed", err)
			}
			return apierr.Unauthorized("refresh_token_expired", fmt.Errorf("refresh token expired"))
		}

		account, err := as.accountRepo.GetByID(inner, existing.AccountID)
		if err != nil {
			return apierr.Internal("account_lookup_failed", err)
		}
		profile, err := as.profileRepo.GetByAccountID(inner, account.ID)
		if err != nil {
			return apierr.Internal("profile_lookup_failed", err)
		}

		p, err := as.issueTokens(inner, account, profile)
		if err != nil {
			return err
		}
		if err := as.tokenRepo.DeleteByAccessToken(inner, existing.AccessToken); err != nil {
			return apierr.Internal("token_delete_failed", err)
		}
		pair = p
		return nil
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.Unauthorized("missing_token", fmt.Errorf("token not set in request data"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := as.tokenRepo.DeleteByAccessToken(dbc, rd.TokenString); err != nil {
		return apierr.Internal("token_delete_failed", err)
	}
	return nil
}

func (as *authService) issueTokens(dbc dbctx.Context, account *types.Account, profile *types.Profile) (*TokenPair, error) {
	accessToken, err := as.generateAccessToken(account)
	if err != nil {
		return nil, apierr.Internal("token_sign_failed", err)
	}
	refreshToken := uuid.New().String()
	row := &types.AccountToken{
		ID:           uuid.New(),
		AccountID:    account.ID,
		ProfileID:    profile.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}
	if _, err := as.tokenRepo.Create(dbc, []*types.AccountToken{row}); err != nil {
		return nil, apierr.Internal("token_write_failed", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (as *authService) generateAccessToken(account *types.Account) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired JWT token")
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid account id in token: %w", err)
	}

	dbc := dbctx.Context{Ctx: ctx}
	row, err := as.tokenRepo.GetByAccessToken(dbc, tokenString)
	if err != nil {
		return ctx, fmt.Errorf("failed to fetch token row: %w", err)
	}

	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: row.RefreshToken,
		AccountID:    accountID,
		ProfileID:    row.ProfileID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
