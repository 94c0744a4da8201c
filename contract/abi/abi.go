package abi

import (
	"errors"
	"fmt"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrInvalidEvent = errors.New("cannot process event without topics")

type ABI struct {
	gethabi.ABI
}

func MustReadABI(rawJSON string) ABI {
	res, err := gethabi.JSON(strings.NewReader(rawJSON))
	if err != nil {
		panic(err)
	}
	return ABI{res}
}

func (abi *ABI) AllEvents() map[string]bool {
	events := make(map[string]bool, len(abi.Events))
	for _, event := range abi.Events {
		events[event.String()] = true
	}
	return events
}

func (abi *ABI) FindMatchingEventABI(topics []common.Hash) *gethabi.Event {
	for _, e := range abi.Events {
		if e.ID == topics[0] {
			indexed := indexedArgs(e.Inputs)
			if len(indexed) == len(topics)-1 {
				event := e
				return &event
			}
		}
	}
	return nil
}

// ParseLog decodes a log emitted by a contract with this ABI.
// Unknown events yield an empty event name without an error.
func (abi *ABI) ParseLog(log *types.Log) (string, map[string]interface{}, error) {
	if len(log.Topics) == 0 {
		return "", nil, ErrInvalidEvent
	}
	event := abi.FindMatchingEventABI(log.Topics)
	if event == nil {
		return "", nil, nil
	}

	res, err := decodeEventLog(event, log.Topics, log.Data)
	if err != nil {
		return "", nil, fmt.Errorf("can't decode event log: %w", err)
	}
	return event.String(), res, nil
}

func indexedArgs(args gethabi.Arguments) gethabi.Arguments {
	var indexed gethabi.Arguments
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func decodeEventLog(event *gethabi.Event, topics []common.Hash, data []byte) (map[string]interface{}, error) {
	indexed := indexedArgs(event.Inputs)
	values := make(map[string]interface{})
	if len(indexed) < len(event.Inputs) {
		if err := event.Inputs.UnpackIntoMap(values, data); err != nil {
			return nil, fmt.Errorf("can't unpack data: %w", err)
		}
	}
	if err := gethabi.ParseTopicsIntoMap(values, indexed, topics[1:]); err != nil {
		return nil, fmt.Errorf("can't unpack topics: %w", err)
	}
	return values, nil
}
