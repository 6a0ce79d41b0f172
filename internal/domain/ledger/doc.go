// Package ledger содержит доменную модель академической ведомости студента.
//
// Пакет определяет:
//
//   - Сущности: Ledger, Semester, Course, Summary
//   - Парсеры полей: ParseNumber, ParseCredits, ClassifyStatus
//   - Парсер таблицы транскрипта (конечный автомат TranscriptParser)
//   - Парсер страницы регистрации: ParseRegistration
//   - Сверку текущего семестра с историей: Reconcile
//   - Дедупликацию и хронологический порядок: Dedup, SortChronological
//   - Агрегаты: ComputeOverallAverage, ComputeSummary
//   - Интерфейс репозитория: Repository
//
// # Поток данных
//
// Пакет не знает об HTML. Адаптер портала превращает страницу в строки
// ячеек, дальше всё происходит здесь:
//
//	transcript := ledger.ParseTranscript(rows)
//	reg := ledger.ParseRegistration(title, regRows)
//	res := ledger.Assemble(ledger.AssembleParams{
//	    MSSV:         "21520001",
//	    Transcript:   transcript,
//	    Registration: &reg,
//	    Previous:     prev,
//	})
//
// # Инварианты
//
//  1. Одна запись на метку семестра; не больше одной записи "Đang học".
//  2. Средние учитывают только курсы с числовым итоговым баллом,
//     без освобождённых ("Miễn") и без курсов без оценки.
//  3. Накопленные кредиты включают все курсы; кредиты для GPA только
//     курсы с числовым баллом. Эти два счётчика не объединяются.
package ledger
