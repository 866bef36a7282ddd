package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

func field(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}

func reply(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

func emptyReply() (*structpb.Struct, error) {
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
}

func (s *GRPCServer) PublicKey(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	key, err := s.sessions.PublicKey(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"key": key})
}

func (s *GRPCServer) Encrypt(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	out, err := s.sessions.Encrypt(ctx, field(in, "rsa"), field(in, "plain"))
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"encrypt": out})
}

func (s *GRPCServer) SignIn(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	pair, err := s.sessions.SignIn(ctx, services.SignInRequest{
		RSA:      field(in, "rsa"),
		Username: field(in, "username"),
		Password: field(in, "password"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (s *GRPCServer) SignOut(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.sessions.SignOut(ctx, accessFrom(ctx).SubjectID); err != nil {
		return nil, toStatus(err)
	}
	return emptyReply()
}

func (s *GRPCServer) Info(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	acc, err := s.sessions.Info(ctx, accessFrom(ctx).SubjectID)
	if err != nil {
		return nil, toStatus(err)
	}

	var signAt any
	if acc.SignAt != nil {
		signAt = acc.SignAt.UTC().Format(time.RFC3339Nano)
	}

	return reply(map[string]any{
		"id":       acc.ID,
		"username": acc.Username,
		"nickname": acc.Nickname,
		"gender":   string(acc.Gender),
		"role":     string(acc.Role),
		"signAt":   signAt,
	})
}

func (s *GRPCServer) UpdateInfo(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	err := s.sessions.UpdateInfo(ctx, accessFrom(ctx).SubjectID, services.UpdateInfoRequest{
		RSA:      field(in, "rsa"),
		Nickname: field(in, "nickname"),
		Gender:   models.Gender(field(in, "gender")),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return emptyReply()
}

func (s *GRPCServer) ChangePassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	err := s.sessions.ChangePassword(ctx, accessFrom(ctx).SubjectID, services.ChangePasswordRequest{
		RSA:            field(in, "rsa"),
		OriginPassword: field(in, "originPassword"),
		Password:       field(in, "password"),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return emptyReply()
}

func (s *GRPCServer) Withdraw(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.sessions.Withdraw(ctx, accessFrom(ctx).SubjectID); err != nil {
		return nil, toStatus(err)
	}
	return emptyReply()
}

// Refresh takes the refresh token from the authorization metadata and the
// current access token from the request body.
func (s *GRPCServer) Refresh(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	refreshToken, err := bearerFromMetadata(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	accessToken := field(in, "accessToken")
	if accessToken == "" {
		return nil, toStatus(common.ErrMissingToken)
	}

	next, err := s.sessions.Refresh(ctx, refreshToken, accessToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return reply(map[string]any{"accessToken": next})
}
