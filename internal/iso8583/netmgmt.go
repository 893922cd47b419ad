package iso8583

import (
	"fmt"
	"time"
)

// supportedInfoCodes are the field-70 values this switch answers with
// response code "00"; anything else (when field 70 is present) draws
// "96" (system error).
var supportedInfoCodes = map[string]bool{
	"001": true,
	"002": true,
	"301": true,
	"162": true,
}

// IsNetworkManagement reports whether an MTI belongs to the network
// management class (08xx).
func IsNetworkManagement(mti string) bool {
	return len(mti) == 4 && mti[:2] == "08"
}

// nextNetworkManagementMTI increments the third digit of an 08xx MTI:
// 0800/0820/0840 -> 0810/0830/0850. The source this switch is modeled
// on only ever emitted 0810; this generalizes the same "function digit
// plus one" rule to any 08x0 request.
func nextNetworkManagementMTI(mti string) (string, error) {
	if !IsNetworkManagement(mti) {
		return "", fmt.Errorf("iso8583: %q is not a network management MTI", mti)
	}
	fn := mti[2] - '0'
	if fn >= 9 {
		return "", fmt.Errorf("iso8583: no response MTI for function digit %c", mti[2])
	}
	return mti[:2] + string(fn+1+'0') + mti[3:], nil
}

// BuildNetworkManagementReply builds the local 08x0 reply for a
// request whose MTI begins with "08", per the field 7/11/39/70 rules
// the switch applies without consulting any issuer.
func BuildNetworkManagementReply(req *Message) (*Message, error) {
	replyMTI, err := nextNetworkManagementMTI(req.MTI)
	if err != nil {
		return nil, err
	}
	reply := New(replyMTI)

	if v, ok := req.GetString(7); ok {
		_ = reply.Set(7, v)
	} else {
		_ = reply.Set(7, time.Now().UTC().Format("0102150405"))
	}

	if v, ok := req.GetString(11); ok {
		_ = reply.Set(11, v)
	} else {
		_ = reply.Set(11, "000000")
	}

	info, hasInfo := req.TrimmedString(70)
	if !hasInfo {
		_ = reply.Set(70, "000")
		_ = reply.Set(39, "00")
		return reply, nil
	}
	_ = reply.Set(70, info)
	if supportedInfoCodes[info] {
		_ = reply.Set(39, "00")
	} else {
		_ = reply.Set(39, "96")
	}
	return reply, nil
}
