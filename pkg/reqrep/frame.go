package reqrep

import (
	"encoding/binary"
	"io"
	"net"

	"main/pkg/exception"
)

const (
	headerSize = 4

	// maxFrameSize bounds a single request or reply body. Tick snapshots for
	// deep books stay well under this.
	maxFrameSize = 16 << 20
)

func writeFrame(conn *net.UnixConn, payload []byte) error {
	if len(payload) > maxFrameSize {
		return exception.ErrFrameTooLarge
	}

	var header [headerSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if err := writeFull(conn, header[:]); err != nil {
		return err
	}

	return writeFull(conn, payload)
}

func readFrame(conn *net.UnixConn) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, exception.ErrFrameTooLarge
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return nil, err
	}

	return payload, nil
}

func writeFull(conn *net.UnixConn, buf []byte) error {
	for len(buf) > 0 {
		n, err := conn.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}
