// go-ant
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-ant.
//
// go-ant is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-ant is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-ant; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package message

import "fmt"

// ID is the one-byte message identifier carried in every frame
type ID byte

// Message identifiers
const (
	IDChannelEvent                ID = 0x40
	IDUnassignChannel             ID = 0x41
	IDAssignChannel               ID = 0x42
	IDSetChannelPeriod            ID = 0x43
	IDSetSearchTimeout            ID = 0x44
	IDSetChannelFrequency         ID = 0x45
	IDSetNetworkKey               ID = 0x46
	IDSystemReset                 ID = 0x4A
	IDOpenChannel                 ID = 0x4B
	IDCloseChannel                ID = 0x4C
	IDRequestMessage              ID = 0x4D
	IDBroadcastData               ID = 0x4E
	IDAcknowledgedData            ID = 0x4F
	IDSetChannelID                ID = 0x51
	IDCapabilities                ID = 0x54
	IDSetLowPrioritySearchTimeout ID = 0x63
	IDStartup                     ID = 0x6F
	IDRFEvent                     ID = 0x01 // MessageID field of RF events inside a channel event
)

var idNames = map[ID]string{
	IDChannelEvent:                "channel-event",
	IDUnassignChannel:             "unassign-channel",
	IDAssignChannel:               "assign-channel",
	IDSetChannelPeriod:            "set-channel-period",
	IDSetSearchTimeout:            "set-search-timeout",
	IDSetChannelFrequency:         "set-channel-frequency",
	IDSetNetworkKey:               "set-network-key",
	IDSystemReset:                 "system-reset",
	IDOpenChannel:                 "open-channel",
	IDCloseChannel:                "close-channel",
	IDRequestMessage:              "request-message",
	IDBroadcastData:               "broadcast-data",
	IDAcknowledgedData:            "acknowledged-data",
	IDSetChannelID:                "set-channel-id",
	IDCapabilities:                "capabilities",
	IDSetLowPrioritySearchTimeout: "set-low-priority-search-timeout",
	IDStartup:                     "startup",
	IDRFEvent:                     "rf-event",
}

func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return fmt.Sprintf("message-0x%02X", byte(id))
}

// EventCode is the outcome reported by a channel event
type EventCode byte

// Channel response and RF event codes
const (
	ResponseNoError             EventCode = 0x00
	EventRxSearchTimeout        EventCode = 0x01
	EventRxFail                 EventCode = 0x02
	EventTx                     EventCode = 0x03
	EventTransferRxFailed       EventCode = 0x04
	EventTransferTxCompleted    EventCode = 0x05
	EventTransferTxFailed       EventCode = 0x06
	EventChannelClosed          EventCode = 0x07
	EventRxFailGoToSearch       EventCode = 0x08
	EventChannelCollision       EventCode = 0x09
	EventTransferTxStart        EventCode = 0x0A
	ChannelInWrongState         EventCode = 0x15
	ChannelNotOpened            EventCode = 0x16
	ChannelIDNotSet             EventCode = 0x18
	CloseAllChannels            EventCode = 0x19
	TransferInProgress          EventCode = 0x1F
	TransferSequenceNumberError EventCode = 0x20
	TransferInError             EventCode = 0x21
	InvalidMessage              EventCode = 0x28
	InvalidNetworkNumber        EventCode = 0x29
	InvalidListID               EventCode = 0x30
	InvalidScanTxChannel        EventCode = 0x31
	InvalidParameterProvided    EventCode = 0x33
	EventSerialQueueOverflow    EventCode = 0x34
	EventQueueOverflow          EventCode = 0x35
)

var eventNames = map[EventCode]string{
	ResponseNoError:             "RESPONSE_NO_ERROR",
	EventRxSearchTimeout:        "EVENT_RX_SEARCH_TIMEOUT",
	EventRxFail:                 "EVENT_RX_FAIL",
	EventTx:                     "EVENT_TX",
	EventTransferRxFailed:       "EVENT_TRANSFER_RX_FAILED",
	EventTransferTxCompleted:    "EVENT_TRANSFER_TX_COMPLETED",
	EventTransferTxFailed:       "EVENT_TRANSFER_TX_FAILED",
	EventChannelClosed:          "EVENT_CHANNEL_CLOSED",
	EventRxFailGoToSearch:       "EVENT_RX_FAIL_GO_TO_SEARCH",
	EventChannelCollision:       "EVENT_CHANNEL_COLLISION",
	EventTransferTxStart:        "EVENT_TRANSFER_TX_START",
	ChannelInWrongState:         "CHANNEL_IN_WRONG_STATE",
	ChannelNotOpened:            "CHANNEL_NOT_OPENED",
	ChannelIDNotSet:             "CHANNEL_ID_NOT_SET",
	CloseAllChannels:            "CLOSE_ALL_CHANNELS",
	TransferInProgress:          "TRANSFER_IN_PROGRESS",
	TransferSequenceNumberError: "TRANSFER_SEQUENCE_NUMBER_ERROR",
	TransferInError:             "TRANSFER_IN_ERROR",
	InvalidMessage:              "INVALID_MESSAGE",
	InvalidNetworkNumber:        "INVALID_NETWORK_NUMBER",
	InvalidListID:               "INVALID_LIST_ID",
	InvalidScanTxChannel:        "INVALID_SCAN_TX_CHANNEL",
	InvalidParameterProvided:    "INVALID_PARAMETER_PROVIDED",
	EventSerialQueueOverflow:    "EVENT_SERIAL_QUE_OVERFLOW",
	EventQueueOverflow:          "EVENT_QUE_OVERFLOW",
}

func (c EventCode) String() string {
	if name, ok := eventNames[c]; ok {
		return name
	}
	return fmt.Sprintf("EVENT_0x%02X", byte(c))
}

// ChannelType selects the direction and sharing mode of a channel
type ChannelType byte

// Channel types accepted by assign-channel
const (
	ChannelTypeBidirectionalSlave       ChannelType = 0x00
	ChannelTypeBidirectionalMaster      ChannelType = 0x10
	ChannelTypeSharedBidirectionalSlave ChannelType = 0x20
	ChannelTypeSlaveReceiveOnly         ChannelType = 0x40
)

// Search timeout sentinels for set-search-timeout, in 2.5 s units otherwise
const (
	SearchTimeoutDisabled byte = 0x00
	SearchTimeoutInfinite byte = 0xFF
)

// Radio constants
const (
	// BaseFrequencyMHz is the frequency that channel RF offsets are added to
	BaseFrequencyMHz = 2400
	// PeriodUnitsPerSecond is the resolution of set-channel-period
	PeriodUnitsPerSecond = 32768
)
