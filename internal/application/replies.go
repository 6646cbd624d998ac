package application

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdayNames = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
}

func displayDate(date time.Time) string {
	return weekdayNames[date.Weekday()] + " " + date.Format("02-01-2006")
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}

// formatTimeRange renders one line of the availability list, e.g.
// "08:00 a 09:00 (Canchas: 1, 2)".
func formatTimeRange(r TimeRange) string {
	return fmt.Sprintf("%s a %s (Canchas: %s)", r.Start, r.End, joinIDs(r.ResourceIDs))
}

func firstName(member Member) string {
	fields := strings.Fields(member.FullName)
	if len(fields) == 0 {
		return ""
	}
	return " " + fields[0]
}

func replyNotRegistered() string {
	return "Hola. Este número no está registrado como socio del club. Contacta a la administración para inscribirlo."
}

func replyGreeting(member Member) string {
	return fmt.Sprintf("Hola%s! Para reservar una cancha escribe la fecha, por ejemplo 20-04.", firstName(member))
}

func replyTimePrompt(date time.Time) string {
	return fmt.Sprintf("Estás reservando para el %s. Responde con la hora de inicio, por ejemplo 08:00, o escribe otra fecha.", displayDate(date))
}

func replyResourcePrompt(date time.Time, start string) string {
	return fmt.Sprintf("Estás reservando para el %s a las %s. Responde con el número de la cancha, o escribe otra fecha.", displayDate(date), start)
}

func replyInvalidDate() string {
	return "No entendí la fecha. Escríbela como día-mes, por ejemplo 20-04."
}

func replyInvalidTime() string {
	return "No entendí la hora. Escríbela como HH:MM, por ejemplo 08:00."
}

func replyNoAvailability(date time.Time) string {
	return fmt.Sprintf("No hay canchas disponibles para el %s. Prueba con otra fecha.", displayDate(date))
}

func replyTimes(date time.Time, ranges []TimeRange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Horarios disponibles para el %s:\n", displayDate(date))
	for _, r := range ranges {
		b.WriteString(formatTimeRange(r))
		b.WriteString("\n")
	}
	b.WriteString("Responde con la hora de inicio, por ejemplo 08:00.")
	return b.String()
}

func replyNoResourcesAt(date time.Time, start string) string {
	return fmt.Sprintf("No quedan canchas libres a las %s del %s. Elige otra hora de la lista.", start, displayDate(date))
}

func replyResources(date time.Time, start string, ids []int) string {
	return fmt.Sprintf("Canchas disponibles el %s a las %s: %s\nResponde con el número de la cancha.", displayDate(date), start, joinIDs(ids))
}

func replyConfirmed(member Member, key SlotKey) string {
	return fmt.Sprintf("Reserva confirmada%s: cancha %d, %s a las %s.", firstNameSuffix(member), key.ResourceID, displayDate(key.Date), key.StartTime)
}

func firstNameSuffix(member Member) string {
	name := firstName(member)
	if name == "" {
		return ""
	}
	return "," + name
}

func replyConflict(key SlotKey, ranges []TimeRange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "La cancha %d a las %s ya no está disponible. Elige otra hora para el %s.", key.ResourceID, key.StartTime, displayDate(key.Date))
	for _, r := range ranges {
		b.WriteString("\n")
		b.WriteString(formatTimeRange(r))
	}
	return b.String()
}

func replySlotMissing() string {
	return "No pudimos completar la reserva: ese horario no existe. Escribe una fecha para empezar de nuevo."
}

func replyCancelled() string {
	return "Listo, cancelamos la reserva en curso. Escribe una fecha cuando quieras reservar."
}

func replyApology() string {
	return "Lo sentimos, tuvimos un problema técnico. Intenta de nuevo en unos minutos."
}
