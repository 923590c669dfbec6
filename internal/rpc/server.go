package rpc

import (
	"context"
	"encoding/json"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"mediconnect/internal/api"
	"mediconnect/internal/apperr"
	"mediconnect/internal/auth"
	mw "mediconnect/internal/middleware"
	"mediconnect/internal/model"
	"mediconnect/internal/service"
)

type Server struct {
	svc service.Services
	log *zap.Logger
}

var _ MediConnectServer = (*Server)(nil)

func New(svc service.Services, log *zap.Logger) *Server {
	return &Server{svc: svc, log: log}
}

// NewGRPCServer wires the interceptor chain and registers MediConnect plus
// the standard health service.
func NewGRPCServer(srv *Server, tokens mw.Verifier, rl *mw.RateLimiter) (*grpc.Server, *health.Server) {
	chain := []grpc.UnaryServerInterceptor{recoverer(srv.log), logging(srv.log)}
	if rl != nil {
		chain = append(chain, mw.RateLimit(rl))
	}
	chain = append(chain, mw.Auth(tokens))

	g := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	RegisterMediConnectServer(g, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(g, hs)
	return g, hs
}

func logging(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		log.Info("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)))
		return resp, err
	}
}

func recoverer(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", info.FullMethod),
					zap.String("stack", string(debug.Stack())))
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return next(ctx, req)
	}
}

func (s *Server) toStatus(err error) error {
	var c codes.Code
	switch apperr.KindOf(err) {
	case apperr.KindAuthentication:
		c = codes.Unauthenticated
	case apperr.KindAuthorization:
		c = codes.PermissionDenied
	case apperr.KindValidation, apperr.KindConflict:
		c = codes.InvalidArgument
	case apperr.KindNotFound:
		c = codes.NotFound
	case apperr.KindRateLimited:
		c = codes.ResourceExhausted
	default:
		s.log.Error("rpc failed", zap.Error(err))
		c = codes.Internal
	}
	return status.Error(c, apperr.PublicMessage(err))
}

// decode copies a Struct into dst through its JSON form and validates it.
func decode(in *structpb.Struct, dst any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	return api.Validate(dst)
}

func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Server) reply(v any) (*structpb.Struct, error) {
	out, err := encode(v)
	if err != nil {
		return nil, s.toStatus(apperr.Internal(err))
	}
	return out, nil
}

func caller(ctx context.Context) auth.Identity {
	id, _ := mw.IdentityFromContext(ctx)
	return id
}

type idRequest struct {
	ID string `json:"id" validate:"required"`
}

type listRequest struct {
	Status string `json:"status"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

func (s *Server) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.RegisterRequest
	if err := decode(in, &req); err != nil {
		return nil, s.toStatus(err)
	}
	sess, err := s.svc.Auth.Register(ctx, req.Input())
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(api.NewAuthResponse(sess))
}

func (s *Server) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.LoginRequest
	if err := decode(in, &req); err != nil {
		return nil, s.toStatus(err)
	}
	sess, err := s.svc.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(api.NewAuthResponse(sess))
}

func (s *Server) GetProfile(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	p, err := s.svc.Profiles.Get(ctx, caller(ctx))
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(api.NewUser(p))
}

func (s *Server) ListOnlineDoctors(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ds, err := s.svc.Doctors.ListOnline(ctx)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(api.OnlineDoctors{Doctors: api.NewDoctors(ds)})
}

func (s *Server) SetAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.SetAvailabilityRequest
	if err := decode(in, &req); err != nil {
		return nil, s.toStatus(err)
	}
	d, err := s.svc.Doctors.SetAvailability(ctx, caller(ctx), *req.IsOnline)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(api.NewDoctor(*d))
}

func (s *Server) CreateAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.CreateAppointmentRequest
	if err := decode(in, &req); err != nil {
		return nil, s.toStatus(err)
	}
	q, err := req.Input()
	if err != nil {
		return nil, s.toStatus(err)
	}
	a, err := s.svc.Appointments.Create(ctx, caller(ctx), q)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(api.NewAppointment(a))
}

func (s *Server) GetAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return nil, s.toStatus(err)
	}
	a, err := s.svc.Appointments.Get(ctx, caller(ctx), req.ID)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(api.NewAppointment(a))
}

func (s *Server) ListAppointments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRequest
	if err := decode(in, &req); err != nil {
		return nil, s.toStatus(err)
	}
	q := service.ListAppointmentsInput{Page: req.Page, Limit: req.Limit}
	if req.Status != "" {
		st, err := model.ParseStatus(req.Status)
		if err != nil {
			return nil, s.toStatus(apperr.Invalid("Invalid status"))
		}
		q.Status = st
	}
	items, total, page, err := s.svc.Appointments.List(ctx, caller(ctx), q)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(api.NewAppointmentList(items, total, page))
}

func (s *Server) UpdateAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var ref idRequest
	if err := decode(in, &ref); err != nil {
		return nil, s.toStatus(err)
	}
	var req api.UpdateAppointmentRequest
	if err := decode(in, &req); err != nil {
		return nil, s.toStatus(err)
	}
	q, err := req.Input()
	if err != nil {
		return nil, s.toStatus(err)
	}
	a, err := s.svc.Appointments.Update(ctx, caller(ctx), ref.ID, q)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(api.NewAppointment(a))
}

func (s *Server) DeleteAppointment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := decode(in, &req); err != nil {
		return nil, s.toStatus(err)
	}
	if err := s.svc.Appointments.Delete(ctx, caller(ctx), req.ID); err != nil {
		return nil, s.toStatus(err)
	}
	return s.reply(map[string]string{"message": "Appointment deleted successfully"})
}
