package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/timeboard/internal/common"
	"github.com/dmitrijs2005/timeboard/internal/server/filter"
	"github.com/dmitrijs2005/timeboard/internal/server/models"
)

func (s *GRPCServer) OpenSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	ws, token, err := s.registry.Open(ctx)
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return nil, status.Error(codes.Internal, "internal error")
	}

	return respond(map[string]any{"session_id": ws.ID(), "session_token": token})
}

func (s *GRPCServer) ListEvents(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	ws, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}

	f := filter.FromQuery(req.GetFields()["category"].GetStringValue())
	events := s.timeline.List(ctx, ws, f)

	return respond(map[string]any{"events": eventsValue(events), "count": len(events)})
}

func (s *GRPCServer) CreateEvent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	ws, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}

	input, err := s.readInput(ctx, req)
	if err != nil {
		return nil, err
	}

	e, err := s.timeline.Create(ctx, ws, input)
	if err != nil {
		return nil, toStatus(err)
	}

	return respond(map[string]any{"event": eventValue(e)})
}

func (s *GRPCServer) UpdateEvent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	ws, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}

	id, err := idFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	input, err := s.readInput(ctx, req)
	if err != nil {
		return nil, err
	}

	updated, err := s.timeline.Update(ctx, ws, id, input)
	if err != nil {
		return nil, toStatus(err)
	}

	return respond(map[string]any{"updated": updated})
}

func (s *GRPCServer) DeleteEvent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	ws, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}

	id, err := idFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	return respond(map[string]any{"deleted": s.timeline.Delete(ctx, ws, id)})
}

func (s *GRPCServer) ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	var categories []any
	for _, name := range models.Categories() {
		categories = append(categories, map[string]any{"name": name, "color": models.CategoryColor(name)})
	}

	return respond(map[string]any{
		"categories":     categories,
		"fallback_color": models.FallbackCategoryColor,
	})
}

// readInput builds the event input from the request, running "uploads"
// through image intake and appending them after "images".
func (s *GRPCServer) readInput(ctx context.Context, req *structpb.Struct) (models.EventInput, error) {
	input := inputFromStruct(req)

	sources, err := uploadsFromStruct(req)
	if err != nil {
		return input, status.Error(codes.InvalidArgument, err.Error())
	}
	if len(sources) > 0 {
		uris, err := s.timeline.EncodeUploads(ctx, sources)
		if err != nil {
			return input, toStatus(err)
		}
		input.Images = append(input.Images, uris...)
	}

	return input, nil
}

func respond(v map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStatus maps domain errors onto gRPC status codes.
func toStatus(err error) error {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		st := status.New(codes.InvalidArgument, err.Error())
		if fields, ferr := structpb.NewStruct(fieldsValue(verr.Fields)); ferr == nil {
			if withDetails, derr := st.WithDetails(fields); derr == nil {
				st = withDetails
			}
		}
		return st.Err()
	case errors.Is(err, common.ErrImageDecode), errors.Is(err, common.ErrImageTooBig):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrSessionExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func fieldsValue(fields map[string]string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
