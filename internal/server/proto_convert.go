package server

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"SpinChallenges/internal/campaign"
)

// encodeNotification builds the binary UI frame for one presenter call.
func encodeNotification(kind, campaignID string, fields map[string]any) ([]byte, error) {
	m := map[string]any{"kind": kind}
	if campaignID != "" {
		m["campaign"] = campaignID
	}
	for k, v := range fields {
		m[k] = v
	}
	msg, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("build %s notification: %w", kind, err)
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}
	return data, nil
}

// decodeNotification is the inverse of encodeNotification.
func decodeNotification(data []byte) (*structpb.Struct, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func completionToMap(c campaign.Completion) map[string]any {
	types := make([]any, len(c.Types))
	for i, t := range c.Types {
		types[i] = t
	}
	return map[string]any{
		"experiment":  c.Experiment,
		"type":        string(c.Type),
		"event_index": c.EventIndex,
		"types":       types,
	}
}

func completionsToList(batch []campaign.Completion) []any {
	out := make([]any, len(batch))
	for i, c := range batch {
		out[i] = completionToMap(c)
	}
	return out
}

func stringsToList(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
