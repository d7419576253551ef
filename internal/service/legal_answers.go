package service

// Canned answers served when the legal assistant backend cannot answer.

const answerGreeting = `سلام! 👋 خوش آمدید به دستیار حقوقی ملکینگ!

من اینجا هستم تا در مسائل حقوقی مربوط به مدیریت ساختمان کمکتون کنم.

**می‌تونید در مورد این موضوعات ازم بپرسید:**
• مدیریت ساختمان و قوانین مربوطه
• مسائل مالی و شارژ ساختمان
• حقوق مالکان و ساکنان
• قراردادهای اجاره
• تخلیه ملک و مسائل قانونی

چه سوالی دارید؟ 😊`

const answerManagement = `## مدیریت ساختمان

**وظایف مدیر ساختمان:**
• نگهداری و تعمیرات مشترک
• مدیریت مالی ساختمان
• اجرای آیین‌نامه ساختمان
• ارتباط با مالکان و ساکنان

**قوانین مهم:**
• قانون تملک آپارتمان‌ها
• آیین‌نامه اجرایی قانون تملک
• مقررات شهرداری

**نکات مهم:**
مدیر ساختمان باید گزارش‌های مالی ماهانه تهیه کند و در اختیار مالکان قرار دهد.`

const answerCharge = `## محاسبه شارژ ساختمان

**شارژ بر اساس:**
• متراژ واحد
• هزینه‌های مشترک ساختمان
• تعمیرات و نگهداری
• خدمات عمومی

**هزینه‌های مشترک شامل:**
• برق مشترک (راه‌پله، پارکینگ، آسانسور)
• آب و گاز مشترک
• تعمیرات عمومی
• بیمه ساختمان
• نظافت و نگهبانی

**نحوه محاسبه:**
شارژ هر واحد = (متراژ واحد ÷ مجموع متراژ کل ساختمان) × مجموع هزینه‌های مشترک

**مثال:** اگر ساختمان 1000 متر مربع باشد و واحد شما 100 متر مربع، شما 10% از هزینه‌های مشترک را پرداخت می‌کنید.`

const answerRights = `## حقوق مالکان و ساکنان

**حقوق مالکان:**
• حق استفاده از مشاعات ساختمان
• حق مشارکت در تصمیم‌گیری‌ها
• حق دریافت گزارش مالی ماهانه
• حق اعتراض به تصمیمات غیرقانونی

**حقوق ساکنان (مستاجران):**
• حق استفاده از امکانات مشترک
• حق دریافت خدمات مناسب
• حق اطلاع از قوانین ساختمان
• حق شکایت در صورت مشکلات

**وظایف مالکان:**
• پرداخت شارژ ماهانه به موقع
• رعایت آیین‌نامه ساختمان
• همکاری با مدیر ساختمان

**وظایف ساکنان:**
• رعایت قوانین ساختمان
• پرداخت اجاره به موقع
• مراقبت از ملک و عدم ایجاد مزاحمت`

const answerLease = `## قرارداد اجاره

**اجزای قرارداد اجاره:**

**مشخصات طرفین:**
• نام و نام خانوادگی کامل
• شماره ملی و شناسنامه
• آدرس و شماره تماس

**مشخصات ملک:**
• آدرس دقیق ملک
• متراژ و تعداد اتاق‌ها
• امکانات و تجهیزات

**شرایط مالی:**
• مبلغ اجاره ماهانه
• نحوه پرداخت (نقدی، چک، واریز)
• ودیعه و پیش‌پرداخت
• شرایط افزایش اجاره

**مدت قرارداد:**
• تاریخ شروع و پایان
• شرایط تمدید
• نحوه فسخ قرارداد

**شرایط مهم:**
• استفاده از ملک فقط برای سکونت
• ممنوعیت زیراجاره بدون اجازه
• تعهدات تعمیرات
• شرایط فسخ یکطرفه`

const answerNonPayment = `## عدم پرداخت اجاره

**مراحل قانونی برای عدم پرداخت:**

**مرحله 1: اخطار کتبی**
• ارسال اخطار رسمی به مستاجر
• تعیین مهلت 15 روزه برای پرداخت
• ذکر عواقب عدم پرداخت

**مرحله 2: اخطار دوم**
• در صورت عدم پاسخ، اخطار دوم
• مهلت 10 روزه اضافی
• تهدید به فسخ قرارداد

**مرحله 3: فسخ قرارداد**
• ارسال اخطار فسخ قرارداد
• مهلت 30 روزه برای تخلیه
• شروع مراحل قانونی تخلیه

**اقدامات قانونی:**
• شکایت به دادگاه
• درخواست تخلیه ملک
• مطالبه خسارت و اجاره معوقه`

const answerEviction = `## تخلیه ملک

**مراحل تخلیه قانونی:**

**مرحله 1: اخطار تخلیه**
• ارسال اخطار کتبی رسمی
• تعیین مهلت 30 روزه
• ذکر دلیل تخلیه

**مرحله 2: شکایت به دادگاه**
• تنظیم دادخواست تخلیه
• ارائه مدارک و مستندات
• پرداخت هزینه دادرسی

**مرحله 3: حکم دادگاه**
• بررسی مدارک توسط قاضی
• صدور حکم تخلیه
• تعیین مهلت اجرا

**دلایل قانونی تخلیه:**
• عدم پرداخت اجاره (3 ماه متوالی)
• استفاده غیرمجاز از ملک
• ایجاد مزاحمت برای همسایگان
• فسخ قرارداد`

const answerAbout = `## درباره من

من یک دستیار حقوقی هوشمند هستم که برای کمک به مسائل حقوقی مربوط به مدیریت ساختمان طراحی شده‌ام.

**قابلیت‌های من:**
• پاسخگویی به سوالات حقوقی ساختمان
• راهنمایی در مورد قوانین مدیریت ساختمان
• کمک در مسائل مالی و شارژ
• راهنمایی در مورد قراردادهای اجاره
• مشاوره در مورد تخلیه ملک

**نکته مهم:**
من یک ابزار کمکی هستم و پاسخ‌هایم نباید به عنوان مشاوره حقوقی رسمی در نظر گرفته شود. برای مسائل پیچیده، حتماً با وکیل مشورت کنید.`

const answerDefault = `متأسفانه در حال حاضر قادر به پاسخگویی نیستم. لطفاً سوال خود را با جزئیات بیشتری مطرح کنید یا از سوالات پیشنهادی استفاده کنید.

**برای کمک بهتر، لطفاً:**
• سوال رو واضح‌تر بپرسید
• از کلمات کلیدی استفاده کنید مثل:
  - مدیریت ساختمان
  - مسائل مالی
  - حقوق مالکان
  - اجاره ساختمان
  - شارژ ساختمان
  - تخلیه ملک
  - قرارداد اجاره`

// legalTopics are checked in order; the first topic with a matching keyword wins.
var legalTopics = []struct {
	topic    string
	keywords []string
	answer   string
}{
	{"greeting", []string{"سلام", "hi"}, answerGreeting},
	{"management", []string{"مدیریت", "مدیر"}, answerManagement},
	{"finance", []string{"شارژ", "مالی", "پول"}, answerCharge},
	{"rights", []string{"حقوق", "قانون"}, answerRights},
	{"rent", []string{"اجاره", "مستاجر", "مالک"}, answerLease},
	{"nonpayment", []string{"پول نمیده", "پرداخت نمی", "بدهکار"}, answerNonPayment},
	{"eviction", []string{"تخلیه", "خروج", "ترک"}, answerEviction},
	{"contract", []string{"قرارداد", "عقد", "پیمان"}, answerLease},
	{"about", []string{"مدل", "هوش مصنوعی", "ai"}, answerAbout},
}
