package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/viralforge/tool-feedback-portal/internal/application"
	"github.com/viralforge/tool-feedback-portal/internal/domain"
)

const serviceName = "toolportal.v1.AdministratorDirectory"

// AdministratorDirectoryService is called by the identity flow whenever an
// account is registered, promoted or deleted.
type AdministratorDirectoryService interface {
	Upsert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Remove(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Lookup(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type DirectoryServer struct {
	service *application.Service
}

func NewDirectoryServer(service *application.Service) *DirectoryServer {
	return &DirectoryServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc AdministratorDirectoryService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*AdministratorDirectoryService)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Upsert", Handler: unaryHandler("Upsert", svc.Upsert)},
			{MethodName: "Remove", Handler: unaryHandler("Remove", svc.Remove)},
			{MethodName: "Lookup", Handler: unaryHandler("Lookup", svc.Lookup)},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "toolportal/v1/administrator_directory.proto",
	}, svc)
}

func (s *DirectoryServer) Upsert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email := stringField(req, "email")
	uid := stringField(req, "uid")
	if email == "" && uid == "" {
		return nil, status.Error(codes.InvalidArgument, "email or uid is required")
	}
	admin, err := s.service.UpsertAdministrator(ctx, application.UpsertAdministratorRequest{
		UID:       uid,
		Email:     email,
		Name:      stringField(req, "name"),
		Superuser: req.GetFields()["is_superuser"].GetBoolValue(),
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return administratorStruct(admin)
}

func (s *DirectoryServer) Remove(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email := stringField(req, "email")
	uid := stringField(req, "uid")
	if email == "" && uid == "" {
		return nil, status.Error(codes.InvalidArgument, "email or uid is required")
	}
	removed, err := s.service.RemoveAdministrator(ctx, email, uid)
	if err != nil {
		return nil, toStatus(err)
	}
	resp, err := structpb.NewStruct(map[string]any{"removed": removed})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *DirectoryServer) Lookup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email := stringField(req, "email")
	if email == "" {
		return nil, status.Error(codes.InvalidArgument, "missing email")
	}
	admin, err := s.service.LookupAdministrator(ctx, email)
	if err != nil {
		return nil, toStatus(err)
	}
	return administratorStruct(admin)
}

func administratorStruct(admin domain.Administrator) (*structpb.Struct, error) {
	fields := map[string]any{
		"id":           admin.ID,
		"uid":          admin.UID,
		"email":        admin.Email,
		"name":         admin.Name,
		"access_level": string(admin.AccessLevel),
		"group_name":   admin.GroupName,
	}
	if admin.RegisteredAt != nil {
		fields["registered_at"] = admin.RegisteredAt.UTC().Format(time.RFC3339)
	}
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, "administrator not found")
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, "access denied")
	case errors.Is(err, domain.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "invalid credentials")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func unaryHandler(method string, call func(context.Context, *structpb.Struct) (*structpb.Struct, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + serviceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return call(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
